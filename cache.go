package tram

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrStaticUnavailable = errors.New("static data unavailable")

// Memoizes the static tables for the lifetime of the process.
//
// Only a successful load is kept. Until then, every call attempts a
// load of its own. Callers racing on the first load may all download
// the archive, and the first to finish wins.
type StaticCache struct {
	load   func(ctx context.Context) (*Static, error)
	static atomic.Pointer[Static]
}

func NewStaticCache(load func(ctx context.Context) (*Static, error)) *StaticCache {
	return &StaticCache{load: load}
}

func (c *StaticCache) Load(ctx context.Context) (*Static, error) {
	if static := c.static.Load(); static != nil {
		return static, nil
	}

	static, err := c.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStaticUnavailable, err)
	}

	if !c.static.CompareAndSwap(nil, static) {
		return c.static.Load(), nil
	}

	return static, nil
}

func (c *StaticCache) Loaded() bool {
	return c.static.Load() != nil
}
