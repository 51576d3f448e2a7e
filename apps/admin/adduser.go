package main

import (
	"time"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/user"
)

// addUser updates or creates a user.User. Admin-created accounts skip email
// verification.
func (cli *commandLine) addUser(name, email, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:          name,
			Email:         email,
			EmailVerified: true,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	usr.Name = name
	usr.EmailVerified = true
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
