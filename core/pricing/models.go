package pricing

import (
	"sort"
	"strconv"

	"github.com/trezcool/tuition/core/student"
)

// Table is the admin-configured price table.
// Levels maps a level name to its subject-count tiers ("1", "2", ...) and their monthly fee.
// Version identifies the stored revision the table was read from; it is opaque to callers.
type Table struct {
	Version           string                        `json:"version"`
	Levels            map[string]map[string]float64 `json:"levels"`
	TransportInbound  float64                       `json:"transportInbound"`
	TransportOutbound float64                       `json:"transportOutbound"`
}

// Defaults returns the price table used until an admin saves one.
func Defaults() Table {
	tiers := func(one, two, three float64) map[string]float64 {
		return map[string]float64{"1": one, "2": two, "3": three}
	}
	t := Table{
		Levels: map[string]map[string]float64{
			student.LevelPrimary1:   tiers(40, 70, 100),
			student.LevelPrimary2:   tiers(40, 70, 100),
			student.LevelPrimary3:   tiers(40, 70, 100),
			student.LevelPrimary4:   tiers(45, 80, 115),
			student.LevelPrimary5:   tiers(45, 80, 115),
			student.LevelPrimary6:   tiers(45, 80, 115),
			student.LevelSecondary1: tiers(50, 90, 130),
			student.LevelSecondary2: tiers(50, 90, 130),
			student.LevelSecondary3: tiers(50, 90, 130),
			student.LevelSecondary5: tiers(55, 100, 145),
			student.LevelSecondary6: tiers(55, 100, 145),
		},
		TransportInbound:  20,
		TransportOutbound: 40,
	}
	t.Version = Fingerprint(t)
	return t
}

// Price returns the tuition for level at the tier, and whether it is populated.
func (t Table) Price(level, tier string) (float64, bool) {
	tiers, ok := t.Levels[level]
	if !ok {
		return 0, false
	}
	price, ok := tiers[tier]
	return price, ok
}

func (t *Table) Set(level, tier string, price float64) {
	if t.Levels == nil {
		t.Levels = make(map[string]map[string]float64)
	}
	if t.Levels[level] == nil {
		t.Levels[level] = make(map[string]float64)
	}
	t.Levels[level][tier] = price
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	c := t
	c.Levels = make(map[string]map[string]float64, len(t.Levels))
	for level, tiers := range t.Levels {
		m := make(map[string]float64, len(tiers))
		for tier, price := range tiers {
			m[tier] = price
		}
		c.Levels[level] = m
	}
	return c
}

// LevelNames returns the levels of t: registered levels first, in display order, then the others sorted.
func (t Table) LevelNames() []string {
	names := make([]string, 0, len(t.Levels))
	for _, lvl := range student.Levels {
		if _, ok := t.Levels[lvl]; ok {
			names = append(names, lvl)
		}
	}
	var extra []string
	for lvl := range t.Levels {
		if !student.IsLevel(lvl) {
			extra = append(extra, lvl)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// Tiers returns every subject-count tier used by any level, in numeric order.
func (t Table) Tiers() []string {
	seen := make(map[string]bool)
	tiers := make([]string, 0)
	for _, m := range t.Levels {
		for tier := range m {
			if !seen[tier] {
				seen[tier] = true
				tiers = append(tiers, tier)
			}
		}
	}
	sortTiers(tiers)
	return tiers
}

func sortTiers(tiers []string) {
	sort.SliceStable(tiers, func(i, j int) bool {
		a, errA := strconv.Atoi(tiers[i])
		b, errB := strconv.Atoi(tiers[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return tiers[i] < tiers[j]
	})
}
