package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	logsvc "github.com/serafinsanchez/googleclassroom-portal/services/logger"
	"github.com/serafinsanchez/googleclassroom-portal/storage/database"
	sqlxrepos "github.com/serafinsanchez/googleclassroom-portal/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	rbLogger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	rbLogger.Enable(!conf.Debug && conf.RollbarToken != "")
	logger = rbLogger

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:     db.DB,
		accSvc: account.NewService(sqlxrepos.NewAccountRepository(db), validate, logger, conf.SecretKey),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
			rbLogger.Wait()
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
