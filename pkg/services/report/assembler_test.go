package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/services/aggregation"
	"github.com/de-tools/maritime-atlas/pkg/services/charts"
	"github.com/de-tools/maritime-atlas/pkg/services/filter"
	"github.com/de-tools/maritime-atlas/pkg/services/registry"
	"github.com/de-tools/maritime-atlas/pkg/services/render"
	"github.com/de-tools/maritime-atlas/pkg/store/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Aggregate(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error) {
	args := m.Called(ctx, w, spec)
	if rf, ok := args.Get(0).(func(context.Context, domain.TimeWindow, domain.CategorySpec) domain.AggregationResult); ok {
		return rf(ctx, w, spec), args.Error(1)
	}
	return args.Get(0).(domain.AggregationResult), args.Error(1)
}

func (m *mockEngine) DominantValue(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec, group string) (string, error) {
	args := m.Called(ctx, w, spec, group)
	return args.String(0), args.Error(1)
}

func (m *mockEngine) RecordTotals(ctx context.Context, tables []string) (map[string]int64, error) {
	args := m.Called(ctx, tables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockEngine) Listing(ctx context.Context, w domain.TimeWindow, spec domain.ListingSpec) (domain.RecordListing, error) {
	args := m.Called(ctx, w, spec)
	if rf, ok := args.Get(0).(func(context.Context, domain.TimeWindow, domain.ListingSpec) domain.RecordListing); ok {
		return rf(ctx, w, spec), args.Error(1)
	}
	return args.Get(0).(domain.RecordListing), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) URL(spec domain.ChartSpec) (string, error) {
	args := m.Called(spec)
	if rf, ok := args.Get(0).(func(domain.ChartSpec) string); ok {
		return rf(spec), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *mockRenderer) RenderAll(ctx context.Context, specs []domain.ChartSpec) (map[string]domain.RenderedChart, error) {
	args := m.Called(ctx, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.RenderedChart), args.Error(1)
}

type zonesProber map[string]bool

func (p zonesProber) TableExists(_ context.Context, table string) (bool, error) {
	return p[table], nil
}

func newRegistry(t *testing.T) registry.Registry {
	r, err := registry.NewRegistry(zonesProber{"zone_2": true}, registry.DefaultZones())
	require.NoError(t, err)
	require.NoError(t, r.Init(context.Background()))
	return r
}

func resultFor(spec domain.CategorySpec) domain.AggregationResult {
	r := domain.NewAggregationResult(spec)
	switch spec.Name {
	case registry.VesselTypes:
		r.Add("Tanker", 10)
		r.Add("Cargo", 7)
		r.Add("Fishing", 7)
		r.Add("Tug", 3)
	case registry.SarStatistics:
		r.Add(aggregation.TotalLabel, 19, 16, 1, 0, 1, 1)
	case registry.CoastalTraffic:
		r.Add("Porto", 2, 30, 140)
	case registry.PatrolActivity:
		r.Add("P-1", 4, 12)
	default:
		r.Add(spec.Title, 5)
	}
	return r
}

func expectAggregations(e *mockEngine) {
	e.On("Aggregate", mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ domain.TimeWindow, spec domain.CategorySpec) domain.AggregationResult {
			return resultFor(spec)
		}, nil)
	e.On("DominantValue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("PT", nil)
	e.On("RecordTotals", mock.Anything, registry.RecordTables).Return(map[string]int64{"sar_reports": 42}, nil)
	e.On("Listing", mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ domain.TimeWindow, spec domain.ListingSpec) domain.RecordListing {
			return domain.NewRecordListing(spec)
		}, nil)
}

func renderedCharts() map[string]domain.RenderedChart {
	out := make(map[string]domain.RenderedChart)
	for _, id := range []string{
		charts.EventTypesChart, charts.EventCausesChart, charts.EventRegionsChart, charts.SarStatisticsChart,
		charts.ZonesChart, charts.VesselFlagsChart, charts.VesselTypesChart, charts.CoastalTrafficChart,
	} {
		out[id] = domain.RenderedChart{ChartID: id, ContentType: "image/png", Image: []byte(id)}
	}
	return out
}

func newAssembler(t *testing.T, e aggregation.Engine, r render.Renderer, ttl time.Duration) Assembler {
	a, err := NewAssembler(newRegistry(t), e, r, cache.NewReportCache(cache.Settings{TTL: ttl}))
	require.NoError(t, err)
	return a
}

var q2Params = filter.Params{QuarterYear: "2024", Quarter: "2"}

func TestAssembler_ExportCachesWithinTTL(t *testing.T) {
	e := new(mockEngine)
	expectAggregations(e)
	r := new(mockRenderer)
	r.On("RenderAll", mock.Anything, mock.Anything).Return(renderedCharts(), nil)

	a := newAssembler(t, e, r, 80*time.Millisecond)
	ctx := context.Background()

	first, err := a.Export(ctx, q2Params)
	require.NoError(t, err)
	second, err := a.Export(ctx, filter.Params{Quarter: "2", QuarterYear: "2024"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	r.AssertNumberOfCalls(t, "RenderAll", 1)

	time.Sleep(150 * time.Millisecond)

	third, err := a.Export(ctx, q2Params)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	r.AssertNumberOfCalls(t, "RenderAll", 2)
}

func TestAssembler_ExportRenderingFailure(t *testing.T) {
	e := new(mockEngine)
	expectAggregations(e)

	batch := &render.BatchError{
		Total:  8,
		Failed: []render.ChartError{{ChartID: charts.VesselTypesChart, Err: errors.New("unexpected status 503")}},
	}
	r := new(mockRenderer)
	r.On("RenderAll", mock.Anything, mock.Anything).Return(nil, batch).Once()
	r.On("RenderAll", mock.Anything, mock.Anything).Return(renderedCharts(), nil).Once()

	a := newAssembler(t, e, r, time.Minute)
	ctx := context.Background()

	dataset, err := a.Export(ctx, q2Params)
	assert.Nil(t, dataset)
	var batchErr *render.BatchError
	require.ErrorAs(t, err, &batchErr)

	// Nothing was cached, so the next export renders again.
	dataset, err = a.Export(ctx, q2Params)
	require.NoError(t, err)
	assert.Len(t, dataset.Rendered, 8)
	r.AssertNumberOfCalls(t, "RenderAll", 2)
}

func TestAssembler_ExportAggregationFailureAborts(t *testing.T) {
	e := new(mockEngine)
	e.On("Aggregate", mock.Anything, mock.Anything, mock.MatchedBy(func(s domain.CategorySpec) bool {
		return s.Name == registry.EventCauses
	})).Return(domain.AggregationResult{}, &aggregation.AggregationError{Category: registry.EventCauses, Err: errors.New("timeout")})
	expectAggregations(e)
	r := new(mockRenderer)

	a := newAssembler(t, e, r, time.Minute)
	_, err := a.Export(context.Background(), q2Params)

	var aggErr *aggregation.AggregationError
	require.ErrorAs(t, err, &aggErr)
	assert.Equal(t, registry.EventCauses, aggErr.Category)
	r.AssertNotCalled(t, "RenderAll", mock.Anything, mock.Anything)
}

func TestAssembler_LiveDegradesPerSection(t *testing.T) {
	e := new(mockEngine)
	e.On("Aggregate", mock.Anything, mock.Anything, mock.MatchedBy(func(s domain.CategorySpec) bool {
		return s.Name == registry.EventCauses
	})).Return(domain.AggregationResult{}, errors.New("timeout"))
	expectAggregations(e)

	r := new(mockRenderer)
	r.On("URL", mock.Anything).Return(func(spec domain.ChartSpec) string {
		return "https://quickchart.io/chart?c=" + spec.ID
	}, nil)

	a := newAssembler(t, e, r, time.Minute)
	dataset, err := a.Live(context.Background(), q2Params)
	require.NoError(t, err)

	_, ok := dataset.Result(registry.EventCauses)
	assert.False(t, ok)
	_, ok = dataset.Result(registry.EventTypes)
	assert.True(t, ok)

	require.Len(t, dataset.Charts, 8)
	assert.Len(t, dataset.ChartURLs, 8)
	assert.Empty(t, dataset.Charts[1].Labels)
	assert.Nil(t, dataset.Rendered)
	assert.Nil(t, dataset.Listings)
	r.AssertNotCalled(t, "RenderAll", mock.Anything, mock.Anything)
	e.AssertNotCalled(t, "Listing", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssembler_ExportListings(t *testing.T) {
	e := new(mockEngine)
	expectAggregations(e)
	r := new(mockRenderer)
	r.On("RenderAll", mock.Anything, mock.Anything).Return(renderedCharts(), nil)

	a := newAssembler(t, e, r, time.Minute)
	dataset, err := a.Export(context.Background(), q2Params)
	require.NoError(t, err)

	require.Len(t, dataset.Listings, 2)
	assert.Equal(t, "sar_reports", dataset.Listings[0].Name)
	assert.Equal(t, "patrol_sorties", dataset.Listings[1].Name)
	e.AssertCalled(t, "Listing", mock.Anything, filter.Resolve(q2Params), mock.Anything)
}

func TestAssembler_ExportListingFailureAborts(t *testing.T) {
	e := new(mockEngine)
	e.On("Listing", mock.Anything, mock.Anything, mock.MatchedBy(func(s domain.ListingSpec) bool {
		return s.Name == "patrol_sorties"
	})).Return(domain.RecordListing{}, &aggregation.AggregationError{Category: "patrol_sorties", Err: errors.New("timeout")})
	expectAggregations(e)
	r := new(mockRenderer)

	a := newAssembler(t, e, r, time.Minute)
	_, err := a.Export(context.Background(), q2Params)

	var aggErr *aggregation.AggregationError
	require.ErrorAs(t, err, &aggErr)
	assert.Equal(t, "patrol_sorties", aggErr.Category)
	r.AssertNotCalled(t, "RenderAll", mock.Anything, mock.Anything)
}

func TestAssembler_TopShipTypes(t *testing.T) {
	e := new(mockEngine)
	e.On("DominantValue", mock.Anything, domain.Unbounded(), mock.Anything, "Tanker").Return("ES", nil)
	expectAggregations(e)
	r := new(mockRenderer)
	r.On("URL", mock.Anything).Return("u", nil)

	a := newAssembler(t, e, r, time.Minute)
	dataset, err := a.Live(context.Background(), q2Params)
	require.NoError(t, err)

	assert.Equal(t, []domain.TopGroup{
		{Label: "Tanker", Count: 10, Dominant: "ES"},
		{Label: "Cargo", Count: 7, Dominant: "PT"},
		{Label: "Fishing", Count: 7, Dominant: "PT"},
	}, dataset.TopShipTypes)

	shipChart := dataset.Charts[6]
	assert.Equal(t, charts.VesselTypesChart, shipChart.ID)
	assert.Equal(t, []string{"Tanker", "Cargo", "Fishing"}, shipChart.Labels)

	// Only the registered zone is aggregated.
	zones := dataset.Charts[4]
	assert.Equal(t, []string{"Zone 2"}, zones.Labels)
	assert.Equal(t, int64(42), dataset.RecordTotals["sar_reports"])
}
