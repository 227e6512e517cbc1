package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL  = 10 * time.Minute
	DefaultSize = 256
)

type Settings struct {
	TTL  time.Duration
	Size int
}

// Builder composes the dataset stored under a fingerprint.
type Builder func(ctx context.Context) (*domain.ReportDataset, error)

// ReportCache maps filter fingerprints to composed report datasets. Entries
// expire TTL after they were stored and are never served past that point.
type ReportCache interface {
	// GetOrCompute returns the unexpired dataset of a fingerprint, or builds
	// and stores it. A failed build stores nothing. The boolean reports a hit.
	GetOrCompute(ctx context.Context, fingerprint string, build Builder) (*domain.ReportDataset, bool, error)
	Purge()
}

type reportCache struct {
	entries *expirable.LRU[string, *domain.ReportDataset]
	flight  singleflight.Group
}

func NewReportCache(settings Settings) ReportCache {
	ttl := settings.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	size := settings.Size
	if size <= 0 {
		size = DefaultSize
	}
	return &reportCache{
		entries: expirable.NewLRU[string, *domain.ReportDataset](size, nil, ttl),
	}
}

func (c *reportCache) GetOrCompute(ctx context.Context, fingerprint string, build Builder) (*domain.ReportDataset, bool, error) {
	logger := zerolog.Ctx(ctx).With().Str("fingerprint", fingerprint).Logger()

	if dataset, ok := c.entries.Get(fingerprint); ok {
		logger.Debug().Msg("report cache hit")
		return dataset, true, nil
	}

	// Concurrent misses on one fingerprint share a single build.
	built := false
	v, err, _ := c.flight.Do(fingerprint, func() (any, error) {
		if dataset, ok := c.entries.Get(fingerprint); ok {
			return dataset, nil
		}

		logger.Debug().Msg("report cache miss, building")
		built = true
		dataset, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if dataset == nil {
			return nil, fmt.Errorf("report builder returned no dataset")
		}
		c.entries.Add(fingerprint, dataset)
		return dataset, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*domain.ReportDataset), !built, nil
}

func (c *reportCache) Purge() {
	c.entries.Purge()
}
