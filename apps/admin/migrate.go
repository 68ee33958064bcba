package main

import (
	"github.com/trezcool/tuition/apps"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/storage/database"
)

var migrateFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Store.Driver != core.StorePostgres {
		return apps.NewArgumentError("migrate needs the postgres store driver, got " + cli.conf.Store.Driver)
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return migrateFunc(db, args[0], args[1:]...)
}
