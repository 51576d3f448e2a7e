package main

import (
	"time"

	"github.com/trezcool/somo/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrRepo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
