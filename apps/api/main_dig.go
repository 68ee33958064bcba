package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/tuition/apps/api/di/dig"
	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/storage"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		storeLoggerParam dig_container.StoreLoggerParam,
		repos *storage.Repositories,
		validate *validator.Validate,
		translator ut.Translator,
		suggester core.Suggester,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q, %s store", conf.Build, conf.Store.Driver))

		core.InitValidators(validate, translator)
		student.InitValidators(validate, translator)

		core.ParseEmailTemplates(apiLogger, conf)

		storeLogger := storeLoggerParam.Logger
		defer func() {
			if err := repos.Close(); err != nil {
				storeLogger.Fatal("Failed to close", err)
			}
		}()
		defer func() {
			if err := dig_container.CloseSuggester(suggester); err != nil {
				apiLogger.Error(fmt.Sprintf("closing suggester: %v", err), err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("store").Set(conf.Store.Driver)

		if conf.Server.DebugHost != "" {
			go func() {
				if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
					apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
				}
			}()
		}

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
