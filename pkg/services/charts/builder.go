package charts

import (
	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/services/registry"
)

const (
	EventTypesChart     = "event_types"
	EventCausesChart    = "event_causes"
	EventRegionsChart   = "event_regions"
	SarStatisticsChart  = "sar_statistics"
	ZonesChart          = "zones"
	VesselFlagsChart    = "vessel_flags"
	VesselTypesChart    = "vessel_types"
	CoastalTrafficChart = "coastal_traffic"
)

// TopShipTypes is the number of ship types shown on the ship-type chart.
const TopShipTypes = 3

type size struct{ width, height int }

var sizes = map[string]size{
	EventTypesChart:     {500, 200},
	EventCausesChart:    {500, 200},
	EventRegionsChart:   {500, 200},
	SarStatisticsChart:  {450, 200},
	ZonesChart:          {450, 200},
	VesselFlagsChart:    {450, 200},
	VesselTypesChart:    {500, 300},
	CoastalTrafficChart: {500, 300},
}

var measureLabels = map[string]string{
	"pob":        "POB",
	"survivors":  "Survivors",
	"injured":    "Injured",
	"dead":       "Dead",
	"missing":    "Missing",
	"medevac":    "Medevac",
	"vessels":    "Total vessels",
	"crew":       "Total crew",
	"passengers": "Total passengers",
}

// Sections is the aggregated data the report charts are drawn from.
type Sections struct {
	Results      []domain.AggregationResult
	Zones        []domain.AggregationResult
	TopShipTypes []domain.TopGroup
}

func (s Sections) result(category string) domain.AggregationResult {
	for _, r := range s.Results {
		if r.Category == category {
			return r
		}
	}
	return domain.AggregationResult{Category: category, Groups: []domain.Group{}}
}

// Build returns the eight report charts in document order. Sections missing
// from the input yield charts without labels or data.
func Build(s Sections) []domain.ChartSpec {
	return []domain.ChartSpec{
		countChart(EventTypesChart, "Events by type", s.result(registry.EventTypes)),
		countChart(EventCausesChart, "Events by cause", s.result(registry.EventCauses)),
		countChart(EventRegionsChart, "SAR reports by region", s.result(registry.EventRegions)),
		totalsChart(SarStatisticsChart, "SAR statistics", s.result(registry.SarStatistics)),
		zonesChart(s.Zones),
		countChart(VesselFlagsChart, "Fishing vessels by flag", s.result(registry.VesselFlags)),
		topChart(VesselTypesChart, "Vessels by ship type", s.TopShipTypes),
		multiSeriesChart(CoastalTrafficChart, "Coastal traffic by origin", s.result(registry.CoastalTraffic)),
	}
}

func newChart(id, title string) domain.ChartSpec {
	return domain.ChartSpec{
		ID:      id,
		Title:   title,
		Kind:    domain.ChartBar,
		Labels:  []string{},
		Series:  []domain.Series{},
		Options: domain.ChartOptions{YMin: 0},
		Width:   sizes[id].width,
		Height:  sizes[id].height,
	}
}

func singleSeries(spec domain.ChartSpec, labels []string, data []int64) domain.ChartSpec {
	spec.Labels = labels
	spec.Series = []domain.Series{{
		Name:   spec.Title,
		Data:   data,
		Colors: Colors(len(data)),
	}}
	return spec
}

func countChart(id, title string, r domain.AggregationResult) domain.ChartSpec {
	if len(r.Measures) == 0 {
		return singleSeries(newChart(id, title), []string{}, []int64{})
	}
	return singleSeries(newChart(id, title), r.Labels(), r.Column(0))
}

// totalsChart turns the single row of a totals category into one bar per measure.
func totalsChart(id, title string, r domain.AggregationResult) domain.ChartSpec {
	labels := make([]string, 0, len(r.Measures))
	data := make([]int64, 0, len(r.Measures))
	for i, m := range r.Measures {
		labels = append(labels, measureLabel(m))
		data = append(data, r.Total(i))
	}
	return singleSeries(newChart(id, title), labels, data)
}

func zonesChart(zones []domain.AggregationResult) domain.ChartSpec {
	labels := make([]string, 0, len(zones))
	data := make([]int64, 0, len(zones))
	for _, z := range zones {
		for _, g := range z.Groups {
			labels = append(labels, g.Label)
			data = append(data, g.Values[0])
		}
	}
	return singleSeries(newChart(ZonesChart, "Entries by zone"), labels, data)
}

func topChart(id, title string, top []domain.TopGroup) domain.ChartSpec {
	labels := make([]string, 0, len(top))
	data := make([]int64, 0, len(top))
	for _, g := range top {
		labels = append(labels, g.Label)
		data = append(data, g.Count)
	}
	return singleSeries(newChart(id, title), labels, data)
}

// multiSeriesChart draws one series per measure, one color per series.
func multiSeriesChart(id, title string, r domain.AggregationResult) domain.ChartSpec {
	spec := newChart(id, title)
	spec.Labels = r.Labels()

	colors := Colors(len(r.Measures))
	for i, m := range r.Measures {
		spec.Series = append(spec.Series, domain.Series{
			Name:   measureLabel(m),
			Data:   r.Column(i),
			Colors: []string{colors[i]},
		})
	}
	return spec
}

func measureLabel(m string) string {
	if l, ok := measureLabels[m]; ok {
		return l
	}
	return m
}
