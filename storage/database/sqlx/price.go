package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/pricing"
)

type (
	priceRow struct {
		Level string  `db:"level"`
		Tier  string  `db:"tier"`
		Price float64 `db:"price"`
	}

	priceTableRow struct {
		Version           int64   `db:"version"`
		TransportInbound  float64 `db:"transport_inbound"`
		TransportOutbound float64 `db:"transport_outbound"`
	}
)

// priceRepository versions the table with an integer counter bumped by every save.
type priceRepository struct {
	db *sqlx.DB
}

var _ pricing.Repository = (*priceRepository)(nil) // interface compliance check

func NewPriceRepository(db *sqlx.DB) *priceRepository {
	return &priceRepository{db: db}
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}

func assembleTable(head priceTableRow, rows []priceRow) pricing.Table {
	t := pricing.Table{
		Version:           formatVersion(head.Version),
		Levels:            make(map[string]map[string]float64),
		TransportInbound:  head.TransportInbound,
		TransportOutbound: head.TransportOutbound,
	}
	for _, r := range rows {
		t.Set(r.Level, r.Tier, r.Price)
	}
	return t
}

func flattenTable(t pricing.Table) []priceRow {
	var rows []priceRow
	for _, level := range t.LevelNames() {
		for tier, price := range t.Levels[level] {
			rows = append(rows, priceRow{Level: level, Tier: tier, Price: price})
		}
	}
	return rows
}

// currentVersion is the version a caller may have seen: the defaults' when nothing is stored yet.
func currentVersion(head priceTableRow, stored bool) string {
	if !stored {
		return pricing.Defaults().Version
	}
	return formatVersion(head.Version)
}

func (repo priceRepository) GetTable(ctx context.Context) (pricing.Table, error) {
	var head priceTableRow
	err := repo.db.GetContext(ctx, &head,
		"SELECT version, transport_inbound, transport_outbound FROM price_table WHERE id = 1")
	if err == sql.ErrNoRows {
		return pricing.Table{}, pricing.ErrNoPrices
	} else if err != nil {
		return pricing.Table{}, errors.Wrap(err, "selecting price table")
	}

	var rows []priceRow
	if err = repo.db.SelectContext(ctx, &rows, "SELECT level, tier, price FROM prices"); err != nil {
		return pricing.Table{}, errors.Wrap(err, "selecting prices")
	}
	return assembleTable(head, rows), nil
}

func (repo priceRepository) SaveTable(ctx context.Context, t pricing.Table, expectVersion string) (pricing.Table, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return pricing.Table{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var head priceTableRow
	stored := true
	err = tx.GetContext(ctx, &head, "SELECT version, transport_inbound, transport_outbound FROM price_table WHERE id = 1 FOR UPDATE")
	if err == sql.ErrNoRows {
		stored = false
	} else if err != nil {
		return pricing.Table{}, errors.Wrap(err, "locking price table")
	}
	if expectVersion != "" && expectVersion != currentVersion(head, stored) {
		return pricing.Table{}, pricing.ErrVersionConflict
	}

	next := priceTableRow{
		Version:           head.Version + 1,
		TransportInbound:  t.TransportInbound,
		TransportOutbound: t.TransportOutbound,
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO price_table (id, version, transport_inbound, transport_outbound)
		VALUES (1, :version, :transport_inbound, :transport_outbound)
		ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version,
			transport_inbound = EXCLUDED.transport_inbound, transport_outbound = EXCLUDED.transport_outbound`, next)
	if err != nil {
		return pricing.Table{}, errors.Wrap(err, "saving price table")
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM prices"); err != nil {
		return pricing.Table{}, errors.Wrap(err, "clearing prices")
	}
	if rows := flattenTable(t); len(rows) > 0 {
		q := "INSERT INTO prices (level, tier, price) VALUES (:level, :tier, :price)"
		if _, err = tx.NamedExecContext(ctx, q, rows); err != nil {
			return pricing.Table{}, errors.Wrap(err, "inserting prices")
		}
	}
	if err = tx.Commit(); err != nil {
		return pricing.Table{}, errors.Wrap(err, "committing prices")
	}

	saved := t.Clone()
	saved.Version = formatVersion(next.Version)
	return saved, nil
}
