// Package storage opens the repositories of the configured store driver.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	"github.com/trezcool/tuition/storage/database"
	sqlxrepos "github.com/trezcool/tuition/storage/database/sqlx"
	"github.com/trezcool/tuition/storage/spreadsheet"
	"github.com/trezcool/tuition/storage/spreadsheet/gsheets"
	"github.com/trezcool/tuition/storage/spreadsheet/inmem"
	"github.com/trezcool/tuition/storage/spreadsheet/rediscache"
	sheetrepos "github.com/trezcool/tuition/storage/spreadsheet/repos"
	"github.com/trezcool/tuition/storage/spreadsheet/xlsx"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type legacyPrices interface {
	MigrateLegacy(ctx context.Context) (bool, error)
}

// Repositories are the repositories of one store, and what must be closed with it.
type Repositories struct {
	Students student.Repository
	Teachers teacher.Repository
	Prices   pricing.Repository

	store   *spreadsheet.Store // nil for postgres
	legacy  legacyPrices
	closers []io.Closer
}

// Open connects to the store named by conf.Store.Driver.
// The postgres database is created & migrated; the spreadsheet sheets are left to Init.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (*Repositories, error) {
	repos := new(Repositories)

	if conf.Store.Driver == core.StorePostgres {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		repos.closers = append(repos.closers, db)
		if err = database.Migrate(db.DB); err != nil {
			_ = repos.Close()
			return nil, err
		}
		repos.Students = sqlxrepos.NewStudentRepository(db)
		repos.Teachers = sqlxrepos.NewTeacherRepository(db)
		repos.Prices = sqlxrepos.NewPriceRepository(db)
		return repos, nil
	}

	backend, err := repos.openBackend(ctx, conf)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	if conf.Store.CacheRedisAddr != "" {
		rdb, err := rediscache.NewClient(ctx, conf.Store.CacheRedisAddr)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		repos.closers = append(repos.closers, rdb)
		backend = rediscache.New(backend, rdb, conf.Store.CacheTTL, logger)
	}

	repos.store = spreadsheet.NewStore(backend, logger, sheetrepos.Schemas()...)
	prices := sheetrepos.NewPriceRepository(repos.store, logger)
	repos.Students = sheetrepos.NewStudentRepository(repos.store)
	repos.Teachers = sheetrepos.NewTeacherRepository(repos.store)
	repos.Prices = prices
	repos.legacy = prices
	return repos, nil
}

func (r *Repositories) openBackend(ctx context.Context, conf *core.Config) (spreadsheet.Backend, error) {
	switch conf.Store.Driver {
	case core.StoreMemory, "":
		return inmem.New(), nil
	case core.StoreXLSX:
		b, err := xlsx.Open(conf.Store.XLSXPath)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, b)
		return b, nil
	case core.StoreGSheets:
		b, err := gsheets.New(ctx, conf)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.Wrap(ErrUnknownDriver, conf.Store.Driver)
	}
}

// Init creates the missing sheets. The postgres schema is already migrated by Open.
func (r *Repositories) Init(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Init(ctx)
}

// MigrateLegacyPrices converts a legacy price sheet to the matrix layout, reporting whether anything changed.
func (r *Repositories) MigrateLegacyPrices(ctx context.Context) (bool, error) {
	if r.legacy == nil {
		return false, nil
	}
	return r.legacy.MigrateLegacy(ctx)
}

// Close closes the connections in the reverse order of their opening.
func (r *Repositories) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}
