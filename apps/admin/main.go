package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/storage/database"
	sqlxrepos "github.com/aredu/arcportal/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

type commandLine struct {
	db      *sqlx.DB
	usrRepo user.Repository
}

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist())
	db, err := database.Open()
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
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
