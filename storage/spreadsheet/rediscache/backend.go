// Package rediscache caches sheet reads in redis, in front of a rate-limited backend.
// Every write through the cache invalidates the sheet; writes made by other processes are seen once the entry expires.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

const keyPrefix = "tuition:sheet:"

type Backend struct {
	next   spreadsheet.Backend
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger core.Logger
}

var (
	_ spreadsheet.Backend     = (*Backend)(nil)
	_ spreadsheet.FreshReader = (*Backend)(nil)
)

func New(next spreadsheet.Backend, rdb redis.UniversalClient, ttl time.Duration, logger core.Logger) *Backend {
	return &Backend{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// NewClient connects to redis at addr and checks the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", addr)
	}
	return rdb, nil
}

func key(sheet string) string {
	return keyPrefix + sheet
}

// Values serves sheet from the cache. Cache failures fall through to the backend.
func (b *Backend) Values(ctx context.Context, sheet string) ([][]string, error) {
	data, err := b.rdb.Get(ctx, key(sheet)).Bytes()
	switch {
	case err == nil:
		var grid [][]string
		if err = json.Unmarshal(data, &grid); err == nil {
			return grid, nil
		}
		b.logger.Warn(fmt.Sprintf("decoding cached sheet %s: %v", sheet, err))
	case err != redis.Nil:
		b.logger.Warn(fmt.Sprintf("reading cached sheet %s: %v", sheet, err))
	}

	return b.FreshValues(ctx, sheet)
}

// FreshValues reads sheet from the backend and refreshes the cached copy.
func (b *Backend) FreshValues(ctx context.Context, sheet string) ([][]string, error) {
	grid, err := b.next.Values(ctx, sheet)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(grid)
	if err == nil {
		err = b.rdb.Set(ctx, key(sheet), data, b.ttl).Err()
	}
	if err != nil {
		b.logger.Warn(fmt.Sprintf("caching sheet %s: %v", sheet, err))
	}
	return grid, nil
}

func (b *Backend) invalidate(ctx context.Context, sheet string) {
	if err := b.rdb.Del(ctx, key(sheet)).Err(); err != nil {
		b.logger.Error(fmt.Sprintf("invalidating cached sheet %s: %v", sheet, err), err)
	}
}

func (b *Backend) Append(ctx context.Context, sheet string, row []string) error {
	defer b.invalidate(ctx, sheet)
	return b.next.Append(ctx, sheet, row)
}

func (b *Backend) UpdateRow(ctx context.Context, sheet string, rowNum int, row []string) error {
	defer b.invalidate(ctx, sheet)
	return b.next.UpdateRow(ctx, sheet, rowNum, row)
}

func (b *Backend) DeleteRow(ctx context.Context, sheet string, rowNum int) error {
	defer b.invalidate(ctx, sheet)
	return b.next.DeleteRow(ctx, sheet, rowNum)
}

func (b *Backend) Clear(ctx context.Context, sheet string) error {
	defer b.invalidate(ctx, sheet)
	return b.next.Clear(ctx, sheet)
}

func (b *Backend) Write(ctx context.Context, sheet string, grid [][]string) error {
	defer b.invalidate(ctx, sheet)
	return b.next.Write(ctx, sheet, grid)
}

func (b *Backend) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	defer b.invalidate(ctx, sheet)
	return b.next.EnsureSheet(ctx, sheet, header)
}
