package main

import (
	"os"

	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/planner"
	logsvc "github.com/trezcool/planner/services/logger"
	"github.com/trezcool/planner/storage/database"
	sqlxstore "github.com/trezcool/planner/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewStdLogger("ADMIN : ", conf)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	cli := commandLine{
		db:            db,
		engine:        conf.Database.Engine,
		sync:          planner.NewServices(sqlxstore.NewStore(db), logsvc.NewRollbarLogger(logger, conf)).Sync,
		appName:       conf.AppName,
		jwtSecret:     conf.Server.JWTSecret,
		jwtExpiration: conf.Server.JWTExpiration,
		out:           os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
