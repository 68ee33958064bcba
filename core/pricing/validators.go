package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trezcool/tuition/core"
)

// Validate rejects negative amounts and tiers that are not positive subject counts.
func (t *Table) Validate() error {
	var flds []core.FieldError
	if t.TransportInbound < 0 {
		flds = append(flds, core.FieldError{Field: "transportInbound", Error: "must not be negative"})
	}
	if t.TransportOutbound < 0 {
		flds = append(flds, core.FieldError{Field: "transportOutbound", Error: "must not be negative"})
	}

	cleaned := make(map[string]map[string]float64, len(t.Levels))
	for _, level := range t.LevelNames() {
		name := core.CleanString(level)
		if name == "" {
			flds = append(flds, core.FieldError{Field: "levels", Error: "level name is required"})
			continue
		}
		if _, dup := cleaned[name]; dup {
			flds = append(flds, core.FieldError{Field: "levels." + name, Error: "duplicate level"})
			continue
		}
		tiers := make(map[string]float64, len(t.Levels[level]))
		for tier, price := range t.Levels[level] {
			key := strings.TrimSpace(tier)
			fld := fmt.Sprintf("levels.%s.%s", name, key)
			if n, err := strconv.Atoi(key); err != nil || n < 1 || strconv.Itoa(n) != key {
				flds = append(flds, core.FieldError{Field: fld, Error: "subject count must be a positive integer"})
				continue
			}
			if price < 0 {
				flds = append(flds, core.FieldError{Field: fld, Error: "must not be negative"})
				continue
			}
			tiers[key] = price
		}
		cleaned[name] = tiers
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	t.Levels = cleaned
	return nil
}
