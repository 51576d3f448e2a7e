package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/somo/core/user"
	inmemdb "github.com/trezcool/somo/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	usrRepo = inmemdb.NewUserRepository()
	return &commandLine{usrRepo: usrRepo}
}

func createUser(t *testing.T, name, email, pwd string) user.User {
	t.Helper()
	usr := user.User{Name: name, Email: email, IsActive: true}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(ctx context.Context, command string, db *sqlx.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "User", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "missing email", args: []string{"adduser", "-name", "Awe"}, wantErr: errHelp},
		{name: "missing name", args: []string{"adduser", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, extra: "mdr"},
		{name: "update existing", args: []string{"adduser", "-name", "Awe Two", "-email", "awe@test.cd"}, extra: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if pwd, ok := tt.extra.(string); ok {
				return []byte(pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			usr, err := usrRepo.GetUserByEmail("awe@test.cd")
			if err != nil {
				t.Fatalf("GetUserByEmail() failed, %v", err)
			}
			if !usr.EmailVerified {
				t.Error("admin-created user should be verified")
			}
			if pwd, ok := tt.extra.(string); ok {
				if err := usr.CheckPassword(pwd); err != nil {
					t.Error("failed to set password")
				}
			}
		})
	}

	if users, _ := usrRepo.QueryAllUsers(); len(users) != 1 {
		t.Errorf("expected a single user, got %d", len(users))
	}
}
