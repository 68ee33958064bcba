package core

import (
	"sort"
	"strings"
)

type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// SortBy sorts items in place following orderings, in priority order.
// field returns the comparable string value of an item for a field name; unknown fields compare equal.
func SortBy[T any](items []T, orderings []Ordering, field func(item T, name string) (string, bool)) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range orderings {
			a, ok := field(items[i], ord.Field)
			if !ok {
				continue
			}
			b, _ := field(items[j], ord.Field)
			if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return false
	})
}
