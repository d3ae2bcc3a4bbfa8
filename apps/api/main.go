package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	echoapi "github.com/trezcool/planner/apps/api/echo"
	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/calendar"
	"github.com/trezcool/planner/core/planner"
	"github.com/trezcool/planner/core/planning"
	logsvc "github.com/trezcool/planner/services/logger"
	"github.com/trezcool/planner/storage/database"
	sqlxstore "github.com/trezcool/planner/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("API : ", conf), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	dbLogger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("DB : ", conf), conf)
	dbLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	svcs := planner.NewServices(sqlxstore.NewStore(db), logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator, err := core.NewTranslator(conf.Locale)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up translator: %v", err), err)
	}
	validate := validator.New()
	core.InitValidators(validate, translator)
	planning.InitValidators(validate)
	calendar.InitValidators(validate)

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
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Calendar Reconciliation

	if sched := conf.Calendar.ReconcileSchedule; sched != "" {
		reconciler := cron.New()
		if _, err = reconciler.AddFunc(sched, func() { reconcileCalendar(svcs.Sync, logger) }); err != nil {
			logger.Fatal(fmt.Sprintf("scheduling calendar reconciliation: %v", err), err)
		}
		reconciler.Start()
		defer reconciler.Stop()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			AppName:        conf.AppName,
			Address:        conf.Server.Address,
			DisableReqLogs: conf.Server.DisableReqLogs,
			Debug:          conf.Debug,
			TestMode:       conf.TestMode,
			JWTSecret:      conf.Server.JWTSecret,
			Services:       svcs,
			Validate:       validate,
			Translator:     translator,
			Logger:         logger,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db, conf.Database.Engine); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func reconcileCalendar(sync *calendar.Synchronizer, logger core.Logger) {
	report, err := sync.ResyncAll(context.Background())
	if err != nil {
		logger.Error("reconciling calendar", err)
		return
	}
	logger.Info("calendar reconciled: " + report.String())
}
