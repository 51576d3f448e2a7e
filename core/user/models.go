package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/somo/core"
)

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateProfile defines what information may be provided to modify an existing User.
// Changing the email resets the verified flag; a new verification mail is sent.
type UpdateProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	PhotoURL string `json:"photo_url" validate:"omitempty,httpurl"`
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(up.Name)
	if name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}

	email := core.CleanString(up.Email, true /* lower */)
	if email != "" {
		up.Email = email
	} else {
		up.Email = origUsr.Email
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(up.Email, origUsr)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type VerifyEmail struct {
	Token string `json:"token,omitempty" validate:"required"`
	UID   string `json:"uid,omitempty" validate:"required"`
}

func (ve VerifyEmail) Validate(validate *validator.Validate) error {
	return validate.Struct(ve)
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return validate.Struct(l)
}
