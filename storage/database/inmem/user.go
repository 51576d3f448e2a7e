package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/somo/core/user"
)

type userRepository struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository() *userRepository {
	return &userRepository{table: make(map[string]*user.User)}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.table))
	for _, u := range repo.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}

	for _, usr := range repo.query() {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	usr.ID = uuid.NewString()
	repo.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	if usr, ok := repo.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	if _, ok := repo.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	for _, id := range ids {
		delete(repo.table, id)
	}
	return nil
}
