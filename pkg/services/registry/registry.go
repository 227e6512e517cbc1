package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Prober checks whether the table backing a dynamic category exists.
type Prober interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

// Registry enumerates the categories a report aggregates.
type Registry interface {
	// Init probes the candidate zones and registers those whose table exists.
	Init(ctx context.Context) error
	// Categories returns the fixed categories in report order.
	Categories() []domain.CategorySpec
	// Zones returns the zone categories found by Init.
	Zones() []domain.CategorySpec
	Category(name string) (domain.CategorySpec, bool)
	// Listings returns the record listings printed with exported reports.
	Listings() []domain.ListingSpec
}

type registry struct {
	prober     Prober
	candidates []ZoneDefinition
	fixed      []domain.CategorySpec
	listings   []domain.ListingSpec

	mu    sync.RWMutex
	zones []domain.CategorySpec
}

func NewRegistry(prober Prober, zones []ZoneDefinition) (Registry, error) {
	if prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}

	fixed := fixedCategories()
	for _, c := range fixed {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	listings := fixedListings()
	for _, l := range listings {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		if err := z.spec().Validate(); err != nil {
			return nil, err
		}
		if _, exists := seen[z.Name]; exists {
			return nil, fmt.Errorf("zone %q is defined twice", z.Name)
		}
		seen[z.Name] = struct{}{}
	}

	return &registry{
		prober:     prober,
		candidates: zones,
		fixed:      fixed,
		listings:   listings,
		zones:      []domain.CategorySpec{},
	}, nil
}

func (r *registry) Init(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	found := make([]domain.CategorySpec, 0, len(r.candidates))
	for _, z := range r.candidates {
		exists, err := r.prober.TableExists(ctx, z.Table)
		if err != nil {
			return fmt.Errorf("probe zone %s: %w", z.Name, err)
		}
		if !exists {
			logger.Debug().Str("zone", z.Name).Str("table", z.Table).Msg("zone table not found, skipping")
			continue
		}
		found = append(found, z.spec())
	}

	r.mu.Lock()
	r.zones = found
	r.mu.Unlock()

	logger.Info().Int("zones", len(found)).Int("candidates", len(r.candidates)).Msg("category registry initialized")
	return nil
}

func (r *registry) Categories() []domain.CategorySpec {
	return append([]domain.CategorySpec(nil), r.fixed...)
}

func (r *registry) Listings() []domain.ListingSpec {
	return append([]domain.ListingSpec(nil), r.listings...)
}

func (r *registry) Zones() []domain.CategorySpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.CategorySpec{}, r.zones...)
}

func (r *registry) Category(name string) (domain.CategorySpec, bool) {
	for _, c := range r.fixed {
		if c.Name == name {
			return c, true
		}
	}
	for _, z := range r.Zones() {
		if z.Name == name {
			return z, true
		}
	}
	return domain.CategorySpec{}, false
}
