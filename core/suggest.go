package core

import (
	"context"
	"errors"
)

// ErrSuggestionsUnavailable is returned whenever the suggestion service cannot answer.
var ErrSuggestionsUnavailable = errors.New("smart suggestions are currently unavailable")

// Suggester produces short recommendations from a usage summary and a data-pattern summary.
type Suggester interface {
	Suggest(ctx context.Context, recentUsage, dataPatterns string) ([]string, error)
}
