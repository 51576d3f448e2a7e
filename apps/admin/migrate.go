package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	appfs "github.com/trezcool/somo/fs"
)

// mockable
var gooseRunFunc = func(ctx context.Context, command string, db *sqlx.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db.DB, dir, args...)
}

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(context.Background(), args[0], cli.db, "migrations", arguments...)
}
