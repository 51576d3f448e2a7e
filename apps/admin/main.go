package main

import (
	"log"
	"os"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig("admin")

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: database.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
