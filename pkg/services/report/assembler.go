package report

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/services/aggregation"
	"github.com/de-tools/maritime-atlas/pkg/services/charts"
	"github.com/de-tools/maritime-atlas/pkg/services/filter"
	"github.com/de-tools/maritime-atlas/pkg/services/registry"
	"github.com/de-tools/maritime-atlas/pkg/services/render"
	"github.com/de-tools/maritime-atlas/pkg/store/cache"
	"github.com/rs/zerolog"
)

// Assembler composes report datasets from raw filter parameters.
type Assembler interface {
	// Live aggregates every category and returns chart URLs without
	// rendering them. A failing category is logged and left out.
	Live(ctx context.Context, params filter.Params) (*domain.ReportDataset, error)
	// Export returns the cached dataset of the filter, or aggregates and
	// renders a new one. Any failure aborts the whole report.
	Export(ctx context.Context, params filter.Params) (*domain.ReportDataset, error)
}

type assembler struct {
	registry registry.Registry
	engine   aggregation.Engine
	renderer render.Renderer
	cache    cache.ReportCache
	now      func() time.Time
}

func NewAssembler(
	reg registry.Registry,
	engine aggregation.Engine,
	renderer render.Renderer,
	reportCache cache.ReportCache,
) (Assembler, error) {
	if reg == nil || engine == nil || renderer == nil || reportCache == nil {
		return nil, fmt.Errorf("registry, engine, renderer and cache are required")
	}
	return &assembler{
		registry: reg,
		engine:   engine,
		renderer: renderer,
		cache:    reportCache,
		now:      time.Now,
	}, nil
}

func (a *assembler) Live(ctx context.Context, params filter.Params) (*domain.ReportDataset, error) {
	w := filter.Resolve(params)
	ctx = zerolog.Ctx(ctx).With().Str("window", w.String()).Logger().WithContext(ctx)

	dataset, err := a.compose(ctx, w, false)
	if err != nil {
		return nil, err
	}

	dataset.ChartURLs = make(map[string]string, len(dataset.Charts))
	for _, spec := range dataset.Charts {
		u, err := a.renderer.URL(spec)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("chart", spec.ID).Msg("chart url unavailable")
			continue
		}
		dataset.ChartURLs[spec.ID] = u
	}
	return dataset, nil
}

func (a *assembler) Export(ctx context.Context, params filter.Params) (*domain.ReportDataset, error) {
	w := filter.Resolve(params)
	fingerprint := params.Fingerprint()
	ctx = zerolog.Ctx(ctx).With().Str("window", w.String()).Logger().WithContext(ctx)

	dataset, hit, err := a.cache.GetOrCompute(ctx, fingerprint, func(ctx context.Context) (*domain.ReportDataset, error) {
		dataset, err := a.compose(ctx, w, true)
		if err != nil {
			return nil, err
		}

		dataset.Listings = make([]domain.RecordListing, 0, len(a.registry.Listings()))
		for _, spec := range a.registry.Listings() {
			listing, err := a.engine.Listing(ctx, w, spec)
			if err != nil {
				return nil, err
			}
			dataset.Listings = append(dataset.Listings, listing)
		}

		rendered, err := a.renderer.RenderAll(ctx, dataset.Charts)
		if err != nil {
			return nil, err
		}
		dataset.Rendered = rendered
		return dataset, nil
	})
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}

	zerolog.Ctx(ctx).Info().Bool("cached", hit).Str("summary", dataset.Summary).Msg("report exported")
	return dataset, nil
}

// compose aggregates every category and builds the chart specs. In strict
// mode the first failure aborts; otherwise failing sections are omitted.
func (a *assembler) compose(ctx context.Context, w domain.TimeWindow, strict bool) (*domain.ReportDataset, error) {
	logger := zerolog.Ctx(ctx)

	dataset := &domain.ReportDataset{
		Window:      w,
		Summary:     filter.Summary(w),
		Results:     []domain.AggregationResult{},
		GeneratedAt: a.now().UTC(),
	}
	sections := charts.Sections{}

	for _, spec := range a.registry.Categories() {
		result, err := a.engine.Aggregate(ctx, w, spec)
		if err != nil {
			if strict {
				return nil, err
			}
			logger.Warn().Err(err).Str("category", spec.Name).Msg("category left out of live report")
			continue
		}
		dataset.Results = append(dataset.Results, result)
	}
	sections.Results = dataset.Results

	for _, spec := range a.registry.Zones() {
		result, err := a.engine.Aggregate(ctx, w, spec)
		if err != nil {
			if strict {
				return nil, err
			}
			logger.Warn().Err(err).Str("zone", spec.Name).Msg("zone left out of live report")
			continue
		}
		sections.Zones = append(sections.Zones, result)
	}
	dataset.Results = append(dataset.Results, sections.Zones...)

	top, err := a.topShipTypes(ctx, dataset)
	if err != nil {
		if strict {
			return nil, err
		}
		logger.Warn().Err(err).Msg("top ship types left out of live report")
	}
	dataset.TopShipTypes = top
	sections.TopShipTypes = top

	totals, err := a.engine.RecordTotals(ctx, registry.RecordTables)
	if err != nil {
		if strict {
			return nil, err
		}
		logger.Warn().Err(err).Msg("record totals left out of live report")
	}
	dataset.RecordTotals = totals

	dataset.Charts = charts.Build(sections)
	return dataset, nil
}

// topShipTypes flags each leading ship type with its most frequent flag across
// all recorded vessels of that type, whatever the report window.
func (a *assembler) topShipTypes(ctx context.Context, dataset *domain.ReportDataset) ([]domain.TopGroup, error) {
	spec, ok := a.registry.Category(registry.VesselTypes)
	if !ok {
		return []domain.TopGroup{}, nil
	}
	result, ok := dataset.Result(registry.VesselTypes)
	if !ok {
		return []domain.TopGroup{}, nil
	}

	groups := charts.TopN(result, charts.TopShipTypes)
	top := make([]domain.TopGroup, 0, len(groups))
	for _, g := range groups {
		dominant, err := a.engine.DominantValue(ctx, domain.Unbounded(), spec, g.Label)
		if err != nil {
			return []domain.TopGroup{}, err
		}
		top = append(top, domain.TopGroup{Label: g.Label, Count: g.Values[0], Dominant: dominant})
	}
	return top, nil
}
