package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/geeky-hamster/Quizme/apps/api/di/dig"
	echoapi "github.com/geeky-hamster/Quizme/apps/api/echo"
	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/user"
	appfs "github.com/geeky-hamster/Quizme/fs"
	schedulersvc "github.com/geeky-hamster/Quizme/services/scheduler"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		dbCloserParam dig_container.DBCloserParam,
		validate *validator.Validate,
		translator ut.Translator,
		usrSvc *user.Service,
		scheduler *schedulersvc.Scheduler,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.InitValidators(validate, translator)
		user.InitValidators(validate, translator)
		catalog.InitValidators(validate, translator)

		if err := core.ParseEmailTemplates(appfs.FS, !conf.Debug); err != nil {
			apiLogger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
		}

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := dbCloserParam.Closer.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		seedCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		admin, created, err := usrSvc.EnsureAdmin(seedCtx, conf.Admin)
		cancel()
		if err != nil {
			apiLogger.Fatal(fmt.Sprintf("seeding admin: %v", err), err)
		}
		if created {
			apiLogger.Info(fmt.Sprintf("admin account %q created", admin.Username))
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start Notifications

		scheduler.Start()
		apiLogger.Info(fmt.Sprintf("scheduler started with %d job(s)", scheduler.Len()))

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		}

		// give outstanding requests and jobs a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
		if err := scheduler.Stop(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop scheduler: %v", err), err)
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
