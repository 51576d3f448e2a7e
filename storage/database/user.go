package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// dbUser mirrors the users table.
type dbUser struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	Email         string       `db:"email"`
	EmailVerified bool         `db:"email_verified"`
	PhotoURL      string       `db:"photo_url"`
	IsActive      bool         `db:"is_active"`
	PasswordHash  []byte       `db:"password_hash"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
	LastLogin     sql.NullTime `db:"last_login"`
}

func (repo userRepository) toRow(usr user.User) dbUser {
	return dbUser{
		ID:            usr.ID,
		Name:          usr.Name,
		Email:         usr.Email,
		EmailVerified: usr.EmailVerified,
		PhotoURL:      usr.PhotoURL,
		IsActive:      usr.IsActive,
		PasswordHash:  usr.PasswordHash,
		CreatedAt:     usr.CreatedAt.UTC(),
		UpdatedAt:     usr.UpdatedAt.UTC(),
		LastLogin:     sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
}

func (repo userRepository) fromRow(row dbUser) user.User {
	usr := user.User{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		EmailVerified: row.EmailVerified,
		PhotoURL:      row.PhotoURL,
		IsActive:      row.IsActive,
		PasswordHash:  row.PasswordHash,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	query := "SELECT EXISTS (SELECT 1 FROM users WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += " AND id NOT IN (?)"
		args = append(args, ids)
	}
	query += ")"

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var exists bool
	if err := repo.db.Get(&exists, repo.db.Rebind(query), inArgs...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	row := repo.toRow(usr)
	query := `
INSERT INTO users (id, name, email, email_verified, photo_url, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :email, :email_verified, :photo_url, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExec(query, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []dbUser
	if err := repo.db.Select(&rows, "SELECT * FROM users ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	var row dbUser
	if err := repo.db.Get(&row, "SELECT * FROM users WHERE id = $1", id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return repo.fromRow(row), nil
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	var row dbUser
	if err := repo.db.Get(&row, "SELECT * FROM users WHERE email = $1", email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return repo.fromRow(row), nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	row := repo.toRow(usr)
	query := `
UPDATE users
SET name = :name,
    email = :email,
    email_verified = :email_verified,
    photo_url = :photo_url,
    is_active = :is_active,
    password_hash = :password_hash,
    updated_at = :updated_at,
    last_login = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExec(query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
