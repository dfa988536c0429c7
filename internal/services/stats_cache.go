package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"rehabcenter/internal/cache"
	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

// StatsCache keeps recent Stats results. It is also an EventPublisher: a
// record write drops every cached entry of that kind.
type StatsCache struct {
	lru *cache.LRUCache[map[string]int]
}

func NewStatsCache(size int, ttl time.Duration) *StatsCache {
	return &StatsCache{lru: cache.NewLRUCache[map[string]int](size, ttl)}
}

func statsKey(kind taxonomy.Kind, p core.Period, field core.DateField) string {
	return fmt.Sprintf("%s|%s|%d", kind, p, field)
}

func (c *StatsCache) get(kind taxonomy.Kind, p core.Period, field core.DateField) (map[string]int, bool) {
	counts, ok := c.lru.Get(statsKey(kind, p, field))
	if !ok {
		return nil, false
	}
	return maps.Clone(counts), true
}

func (c *StatsCache) set(kind taxonomy.Kind, p core.Period, field core.DateField, counts map[string]int) {
	c.lru.Set(statsKey(kind, p, field), maps.Clone(counts))
}

// PublishRecordChanged invalidates the kind's entries.
func (c *StatsCache) PublishRecordChanged(_ context.Context, kind string, _ int64, _ string) error {
	prefix := kind + "|"
	c.lru.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
	return nil
}

// CleanExpired lets a cache.Manager expire entries.
func (c *StatsCache) CleanExpired() int {
	return c.lru.CleanExpired()
}

// Fanout delivers each record change to every publisher in order.
type Fanout []EventPublisher

func (f Fanout) PublishRecordChanged(ctx context.Context, kind string, id int64, action string) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishRecordChanged(ctx, kind, id, action); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
