package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/trezcool/tuition/core"
	logsvc "github.com/trezcool/tuition/services/logger"
	"github.com/trezcool/tuition/storage"
	"github.com/trezcool/tuition/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	repos, err := storage.Open(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	openDB := func() (*sql.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		return db.DB, nil
	}

	cli := newCommandLine(conf, logger, repos, openDB)
	err = cli.run(os.Args)
	if cerr := repos.Close(); cerr != nil {
		logger.Error("closing store: "+cerr.Error(), cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("error: "+err.Error(), err)
		}
		os.Exit(1)
	}
}
