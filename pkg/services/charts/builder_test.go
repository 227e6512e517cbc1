package charts

import (
	"testing"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/services/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countResult(category string, pairs ...any) domain.AggregationResult {
	r := domain.AggregationResult{Category: category, Measures: []string{domain.CountMeasure}, Groups: []domain.Group{}}
	for i := 0; i < len(pairs); i += 2 {
		r.Add(pairs[i].(string), int64(pairs[i+1].(int)))
	}
	return r
}

func TestTopN_TiesKeepDiscoveryOrder(t *testing.T) {
	r := countResult(registry.VesselTypes, "A", 10, "B", 7, "C", 7, "D", 3)

	top := TopN(r, 3)
	labels := make([]string, 0, len(top))
	for _, g := range top {
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{"A", "B", "C"}, labels)

	r = countResult(registry.VesselTypes, "D", 3, "C", 7, "B", 7, "A", 10)
	top = TopN(r, 3)
	assert.Equal(t, "A", top[0].Label)
	assert.Equal(t, "C", top[1].Label)
	assert.Equal(t, "B", top[2].Label)

	assert.Len(t, TopN(countResult(registry.VesselTypes, "A", 1), 3), 1)
}

func TestTopN_DoesNotReorderInput(t *testing.T) {
	r := countResult(registry.VesselTypes, "D", 3, "A", 10)
	TopN(r, 3)
	assert.Equal(t, []string{"D", "A"}, r.Labels())
}

func TestColors_Cycle(t *testing.T) {
	colors := Colors(12)
	require.Len(t, colors, 12)
	assert.Equal(t, Palette[0], colors[0])
	assert.Equal(t, Palette[9], colors[9])
	assert.Equal(t, Palette[0], colors[10])
	assert.Equal(t, Palette[1], colors[11])
	assert.Empty(t, Colors(0))
}

func TestBuild_AllSeriesAligned(t *testing.T) {
	traffic := domain.AggregationResult{
		Category: registry.CoastalTraffic,
		Measures: []string{"vessels", "crew", "passengers"},
		Groups:   []domain.Group{},
	}
	traffic.Add("Porto", 2, 30, 140)
	traffic.Add("Vigo", 1, 0, 0)

	stats := domain.AggregationResult{
		Category: registry.SarStatistics,
		Measures: []string{"pob", "survivors", "injured", "dead", "missing", "medevac"},
		Groups:   []domain.Group{{Label: "Total", Values: []int64{19, 16, 1, 0, 1, 1}}},
	}

	specs := Build(Sections{
		Results: []domain.AggregationResult{
			countResult(registry.EventTypes, "Rescue", 2, "Towing", 1, domain.UnknownLabel, 2),
			countResult(registry.EventCauses),
			countResult(registry.VesselFlags, "PT", 4, "ES", 9),
			stats,
			traffic,
		},
		Zones: []domain.AggregationResult{
			countResult("zone_1", "Zone 1", 5),
			countResult("zone_4", "Zone 4", 0),
		},
		TopShipTypes: []domain.TopGroup{{Label: "Tanker", Count: 4, Dominant: "ES"}},
	})

	require.Len(t, specs, 8)
	ids := make([]string, 0, len(specs))
	for _, s := range specs {
		ids = append(ids, s.ID)
		assert.True(t, s.Aligned(), "chart %s must align series with labels", s.ID)
		assert.Equal(t, domain.ChartBar, s.Kind)
		assert.Equal(t, 0, s.Options.YMin)
		assert.NotZero(t, s.Width)
		assert.NotZero(t, s.Height)
		assert.NotNil(t, s.Labels)
	}
	assert.Equal(t, []string{
		EventTypesChart, EventCausesChart, EventRegionsChart, SarStatisticsChart,
		ZonesChart, VesselFlagsChart, VesselTypesChart, CoastalTrafficChart,
	}, ids)

	types := specs[0]
	assert.Equal(t, []string{"Rescue", "Towing", domain.UnknownLabel}, types.Labels)
	assert.Equal(t, []int64{2, 1, 2}, types.Series[0].Data)
	assert.Equal(t, Palette[:3], types.Series[0].Colors)

	causes := specs[1]
	assert.Empty(t, causes.Labels)
	require.Len(t, causes.Series, 1)
	assert.Empty(t, causes.Series[0].Data)

	regions := specs[2]
	assert.Empty(t, regions.Labels)

	sar := specs[3]
	assert.Equal(t, []string{"POB", "Survivors", "Injured", "Dead", "Missing", "Medevac"}, sar.Labels)
	assert.Equal(t, []int64{19, 16, 1, 0, 1, 1}, sar.Series[0].Data)
	assert.Equal(t, 450, sar.Width)

	zones := specs[4]
	assert.Equal(t, []string{"Zone 1", "Zone 4"}, zones.Labels)
	assert.Equal(t, []int64{5, 0}, zones.Series[0].Data)

	flags := specs[5]
	assert.Equal(t, []string{"PT", "ES"}, flags.Labels, "labels keep discovery order")

	shipTypes := specs[6]
	assert.Equal(t, []string{"Tanker"}, shipTypes.Labels)
	assert.Equal(t, 300, shipTypes.Height)

	coastal := specs[7]
	assert.Equal(t, []string{"Porto", "Vigo"}, coastal.Labels)
	require.Len(t, coastal.Series, 3)
	assert.Equal(t, "Total crew", coastal.Series[1].Name)
	assert.Equal(t, []int64{30, 0}, coastal.Series[1].Data)
	assert.Equal(t, []string{Palette[2]}, coastal.Series[2].Colors)
}

func TestBuild_Empty(t *testing.T) {
	specs := Build(Sections{})
	require.Len(t, specs, 8)
	for _, s := range specs {
		assert.Empty(t, s.Labels, s.ID)
		assert.True(t, s.Aligned(), s.ID)
	}
}
