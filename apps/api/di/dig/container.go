package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/geeky-hamster/Quizme/apps/api/echo"
	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/notify"
	"github.com/geeky-hamster/Quizme/core/stats"
	"github.com/geeky-hamster/Quizme/core/user"
	cachesvc "github.com/geeky-hamster/Quizme/services/cache"
	emailsvc "github.com/geeky-hamster/Quizme/services/email"
	logsvc "github.com/geeky-hamster/Quizme/services/logger"
	schedulersvc "github.com/geeky-hamster/Quizme/services/scheduler"
	"github.com/geeky-hamster/Quizme/storage/database"
	inmemdb "github.com/geeky-hamster/Quizme/storage/database/inmem"
	"github.com/geeky-hamster/Quizme/storage/database/sqlxrepos"
)

const setUpTimeout = 30 * time.Second

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are backed by Postgres or by the in-memory store, depending on `database.engine`.
type Repositories struct {
	dig.Out
	Users   user.Repository
	Catalog catalog.Repository
	Scores  attempt.Repository
	Stats   stats.Repository
	Closer  io.Closer `name:"dbCloser"`
}

type DBCloserParam struct {
	dig.In
	Closer io.Closer `name:"dbCloser"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == "memory" {
		loggerParam.Logger.Warn("using the in-memory database: data is lost on shutdown")
		db := inmemdb.NewDB()
		return Repositories{
			Users:   inmemdb.NewUserRepository(db),
			Catalog: inmemdb.NewCatalogRepository(db),
			Scores:  inmemdb.NewScoreRepository(db),
			Stats:   inmemdb.NewStatsRepository(db),
			Closer:  nopCloser{},
		}
	}

	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = database.MigrateUp(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Repositories{
		Users:   sqlxrepos.NewUserRepository(db),
		Catalog: sqlxrepos.NewCatalogRepository(db),
		Scores:  sqlxrepos.NewScoreRepository(db),
		Stats:   sqlxrepos.NewStatsRepository(db),
		Closer:  db,
	}
}

func newCache(conf *core.Config, logger core.Logger) core.Cache {
	if conf.Redis.URL == "" {
		return cachesvc.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()

	cache, err := cachesvc.NewRedisCache(ctx, conf.Redis.URL, "quizmaster:")
	if err != nil {
		logger.Error(fmt.Sprintf("falling back to the in-memory cache: %v", err), err)
		return cachesvc.NewMemoryCache()
	}
	return cache
}

func newEmailService(conf *core.Config) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, log.New(os.Stdout, "MAIL : ", log.LstdFlags))
	}
	return emailsvc.NewSendgridService(conf)
}

func newAttemptService(repo attempt.Repository, catSvc *catalog.Service) *attempt.Service {
	return attempt.NewService(repo, catSvc)
}

func newStatsService(repo stats.Repository, cache core.Cache, conf *core.Config, logger core.Logger) *stats.Service {
	return stats.NewService(repo, cache, conf.StatsCacheTTL, logger)
}

func newNotifier(
	usrSvc *user.Service,
	attemptSvc *attempt.Service,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *notify.Notifier {
	return notify.NewNotifier(usrSvc, attemptSvc, mailSvc, conf, logger)
}

// newScheduler registers the notification jobs; none when the notifier is disabled.
func newScheduler(conf *core.Config, logger core.Logger, notifier *notify.Notifier) (*schedulersvc.Scheduler, error) {
	sched := schedulersvc.New(logger)
	if !conf.Notifier.Enabled {
		return sched, nil
	}

	jobs := []struct {
		period notify.Period
		spec   string
	}{
		{notify.Daily, conf.Notifier.DailySchedule},
		{notify.Monthly, conf.Notifier.MonthlySchedule},
	}
	for _, job := range jobs {
		p := job.period
		err := sched.Add(p.Name+"-notifications", job.spec, time.Hour, func(ctx context.Context) error {
			report, err := notifier.Run(ctx, p)
			if err != nil {
				return err
			}
			logger.Info("notifier: " + report.String())
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	usrSvc *user.Service,
	catSvc *catalog.Service,
	attemptSvc *attempt.Service,
	statsSvc *stats.Service,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		CatalogSvc: catSvc,
		AttemptSvc: attemptSvc,
		StatsSvc:   statsSvc,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newCache))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(catalog.NewService))
	must(c.Provide(newAttemptService))
	must(c.Provide(newStatsService))
	must(c.Provide(newNotifier))
	must(c.Provide(newScheduler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
