package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/notify"
	"github.com/geeky-hamster/Quizme/core/user"
	appfs "github.com/geeky-hamster/Quizme/fs"
	emailsvc "github.com/geeky-hamster/Quizme/services/email"
	logsvc "github.com/geeky-hamster/Quizme/services/logger"
	"github.com/geeky-hamster/Quizme/storage/database"
	inmemdb "github.com/geeky-hamster/Quizme/storage/database/inmem"
	"github.com/geeky-hamster/Quizme/storage/database/sqlxrepos"
)

var logger core.Logger

type repositories struct {
	users   user.Repository
	catalog catalog.Repository
	scores  attempt.Repository
}

func openRepositories(conf *core.Config) (*sqlx.DB, repositories, error) {
	if conf.Database.Engine == "memory" {
		db := inmemdb.NewDB()
		return nil, repositories{
			users:   inmemdb.NewUserRepository(db),
			catalog: inmemdb.NewCatalogRepository(db),
			scores:  inmemdb.NewScoreRepository(db),
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, repositories{}, err
	}
	return db, repositories{
		users:   sqlxrepos.NewUserRepository(db),
		catalog: sqlxrepos.NewCatalogRepository(db),
		scores:  sqlxrepos.NewScoreRepository(db),
	}, nil
}

func main() {
	conf := core.NewConfig()
	rl := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger = rl

	// set up DB
	db, repos, err := openRepositories(conf)
	errAndDie(err)
	if db != nil {
		defer db.Close()
	}

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	errAndDie(core.ParseEmailTemplates(appfs.FS, !conf.Debug))

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, log.New(os.Stdout, "MAIL : ", log.LstdFlags))
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}
	usrSvc := user.NewService(repos.users, validate)
	catSvc := catalog.NewService(repos.catalog, validate)
	attemptSvc := attempt.NewService(repos.scores, catSvc)

	// start CLI
	cli := commandLine{
		db:       db,
		usrSvc:   usrSvc,
		notifier: notify.NewNotifier(usrSvc, attemptSvc, mailSvc, conf, logger),
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	rl.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		if db != nil {
			db.Close()
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
