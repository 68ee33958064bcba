package pricing

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
)

var (
	// ErrNoPrices is returned by repositories when no price table was ever saved.
	ErrNoPrices = errors.New("no price table stored")
	// ErrVersionConflict is returned when the table changed since the caller read it.
	ErrVersionConflict = errors.New("price table was modified by someone else; reload and retry")
)

type (
	Repository interface {
		GetTable(ctx context.Context) (Table, error)
		// SaveTable replaces the stored table if its version still is expectVersion (any version when empty),
		// and returns the table with its new version.
		SaveTable(ctx context.Context, t Table, expectVersion string) (Table, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Table returns the current price table.
// The defaults are returned when nothing is stored or the read fails.
func (svc *Service) Table(ctx context.Context) Table {
	t, err := svc.repo.GetTable(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNoPrices {
			svc.logger.Error(fmt.Sprintf("fetching prices: %v", err), err)
		}
		return Defaults()
	}
	if t.Levels == nil {
		t.Levels = make(map[string]map[string]float64)
	}
	return t
}

// Update validates & replaces the whole price table.
// t.Version must hold the version the edit started from; an empty version overwrites unconditionally.
func (svc *Service) Update(ctx context.Context, t Table) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	saved, err := svc.repo.SaveTable(ctx, t, t.Version)
	if err != nil {
		return Table{}, errors.Wrap(err, "saving prices")
	}
	return saved, nil
}
