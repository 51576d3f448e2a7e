package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrEmailNotVerified = errors.New("email address not verified")

	verificationSubject  = "Verify your email address"
	passwordResetSubject = "Password reset"
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		UpdateUser(user User) (User, error)
		DeleteUsersByID(ids ...string) error
	}

	Service interface {
		CheckEmailUniqueness(email string, exclUsers ...User) error
		Register(nu NewUser) (User, error)
		QueryAll() ([]User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		VerifyEmail(ve VerifyEmail) (User, error)
		ResendVerification(email string) error
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error
		ChangePassword(usr User, cp ChangePassword) (User, error)
		UpdateProfile(usr User, up UpdateProfile) (User, error)
		SetLastLogin(usr User) error
		Delete(ids ...string) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGen(conf)
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the user and sends an email verification link.
func (svc *service) Register(nu NewUser) (User, error) {
	usr, err := svc.register(nu)
	if err != nil {
		return User{}, err
	}
	go svc.sendVerificationMail(usr)
	return usr, nil
}

func (svc *service) register(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) VerifyEmail(ve VerifyEmail) (User, error) {
	usr, err := svc.getByUID(ve.UID)
	if err != nil {
		return User{}, err
	}
	if err := verifyToken(usr, ve.Token, verificationSalt, emailVerificationTimeoutDelta); err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if usr.EmailVerified {
		return usr, nil
	}
	usr.EmailVerified = true
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *service) ResendVerification(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	if usr.EmailVerified {
		return nil
	}
	go svc.sendVerificationMail(usr)
	return nil
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	usr, err := svc.getByUID(rp.UID)
	if err != nil {
		return err
	}
	if err := verifyToken(usr, rp.Token, passwordResetSalt, passwordResetTimeoutDelta); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr)
	return err
}

func (svc *service) ChangePassword(usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		err = errors.New("invalid password")
		return User{}, core.NewValidationError(err, core.FieldError{Field: "old_password", Error: err.Error()})
	}
	if err := usr.SetPassword(cp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *service) UpdateProfile(usr User, up UpdateProfile) (User, error) {
	usr, emailChanged, err := svc.updateProfile(usr, up)
	if err != nil {
		return User{}, err
	}
	if emailChanged {
		go svc.sendVerificationMail(usr)
	}
	return usr, nil
}

func (svc *service) updateProfile(usr User, up UpdateProfile) (User, bool, error) {
	emailChanged := up.Email != usr.Email

	usr.Name = up.Name
	usr.Email = up.Email
	usr.PhotoURL = up.PhotoURL
	if emailChanged {
		usr.EmailVerified = false
	}
	usr.UpdatedAt = time.Now().UTC()

	usr, err := svc.repo.UpdateUser(usr)
	if err != nil {
		return User{}, false, err
	}
	return usr, emailChanged, nil
}

func (svc *service) SetLastLogin(usr User) error {
	usr.LastLogin = time.Now().UTC()
	_, err := svc.repo.UpdateUser(usr)
	return err
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *service) getByUID(uid string) (User, error) {
	id, err := decodeUID(uid)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	return svc.repo.GetUserByID(id)
}

func (svc *service) sendVerificationMail(usr User) {
	svc.sendTokenMail(usr, verificationSubject, "email-verification", verificationSalt, "verify-email")
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.sendTokenMail(usr, passwordResetSubject, "password-reset", passwordResetSalt, "reset-password")
}

func (svc *service) sendTokenMail(usr User, subject, template string, salt []byte, frontendPath string) {
	token := makeToken(usr, salt)
	uid := EncodeUID(usr)
	data := struct {
		User User
		URL  string
	}{
		User: usr,
		URL:  fmt.Sprintf("%s/%s?uid=%s&token=%s", svc.conf.FrontendBaseURL, frontendPath, uid, token),
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("%s %s", svc.conf.AppName, subject),
		TemplateName: template,
		TemplateData: data,
	}
	svc.mailSvc.SendMessages(msg)
}
