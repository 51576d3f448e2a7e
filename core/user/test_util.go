package user

import (
	"github.com/trezcool/somo/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose mails are sent synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGen(conf)
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) Register(nu NewUser) (User, error) {
	usr, err := svc.register(nu)
	if err != nil {
		return User{}, err
	}
	// run synchronously
	svc.sendVerificationMail(usr)
	return usr, nil
}

func (svc *serviceMock) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *serviceMock) UpdateProfile(usr User, up UpdateProfile) (User, error) {
	usr, emailChanged, err := svc.updateProfile(usr, up)
	if err != nil {
		return User{}, err
	}
	if emailChanged {
		// run synchronously
		svc.sendVerificationMail(usr)
	}
	return usr, nil
}

func (svc *serviceMock) ResendVerification(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	if usr.EmailVerified {
		return nil
	}
	svc.sendVerificationMail(usr)
	return nil
}
