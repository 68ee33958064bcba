package sheetrepos

import (
	"context"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

// priceRepository stores the price table as a wide matrix. A legacy item,price sheet is still read.
type priceRepository struct {
	store  *spreadsheet.Store
	logger core.Logger
}

var _ pricing.Repository = (*priceRepository)(nil) // interface compliance check

func NewPriceRepository(store *spreadsheet.Store, logger core.Logger) *priceRepository {
	return &priceRepository{store: store, logger: logger}
}

// decode returns the table stored in grid; ok is false when the sheet holds no prices.
func (repo priceRepository) decode(grid [][]string) (pricing.Table, bool) {
	var (
		t  pricing.Table
		ok bool
	)
	if pricing.IsLegacy(grid) {
		repo.logger.Warn("Prices sheet uses the legacy item,price layout; run `admin migrateprices`")
		t, ok = pricing.DecodeLegacy(grid)
	} else {
		t, ok = pricing.DecodeWide(grid)
	}
	t.Version = pricing.Fingerprint(t)
	return t, ok
}

func (repo priceRepository) GetTable(ctx context.Context) (pricing.Table, error) {
	grid, err := repo.store.Grid(ctx, PricesSheet)
	if err != nil {
		return pricing.Table{}, err
	}
	t, ok := repo.decode(grid)
	if !ok {
		return pricing.Table{}, pricing.ErrNoPrices
	}
	return t, nil
}

// SaveTable rewrites the sheet in place: previously unseen levels & tiers grow the matrix.
func (repo priceRepository) SaveTable(ctx context.Context, t pricing.Table, expectVersion string) (pricing.Table, error) {
	err := repo.store.BatchRewrite(ctx, PricesSheet, func(grid [][]string) ([][]string, error) {
		current, ok := repo.decode(grid)
		if !ok {
			current = pricing.Defaults()
		}
		if expectVersion != "" && expectVersion != current.Version {
			return nil, pricing.ErrVersionConflict
		}
		if pricing.IsLegacy(grid) {
			grid = nil
		}
		return pricing.ApplyWide(grid, t), nil
	})
	if err != nil {
		return pricing.Table{}, err
	}
	saved := t.Clone()
	saved.Version = pricing.Fingerprint(saved)
	return saved, nil
}

// MigrateLegacy converts a legacy item,price sheet to the wide matrix. It reports whether anything was converted.
func (repo priceRepository) MigrateLegacy(ctx context.Context) (bool, error) {
	var migrated bool
	err := repo.store.Mutate(ctx, PricesSheet, func(tx *spreadsheet.Tx) error {
		grid, err := tx.Grid()
		if err != nil || !pricing.IsLegacy(grid) {
			return err
		}
		t, _ := pricing.DecodeLegacy(grid)
		if err = tx.Rewrite(pricing.ApplyWide(nil, t)); err != nil {
			return err
		}
		migrated = true
		return nil
	})
	return migrated, err
}
