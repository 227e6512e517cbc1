package adapters

import (
	"github.com/de-tools/maritime-atlas/pkg/models/api"
	"github.com/de-tools/maritime-atlas/pkg/models/domain"
)

func MapWindowDomainToApi(w domain.TimeWindow, summary string) api.Window {
	res := api.Window{
		Kind:  string(w.Kind()),
		Label: summary,
	}
	if start, end, ok := w.Bounds(); ok {
		res.Start = start.Format(domain.DateLayout)
		res.End = end.Format(domain.DateLayout)
	}
	return res
}

func MapResultDomainToApi(r domain.AggregationResult) api.CategoryResult {
	res := api.CategoryResult{
		Category: r.Category,
		Title:    r.Title,
		Measures: append([]string{}, r.Measures...),
		Groups:   make([]api.Group, 0, len(r.Groups)),
	}
	for _, g := range r.Groups {
		res.Groups = append(res.Groups, api.Group{
			Label:  g.Label,
			Values: append([]int64{}, g.Values...),
		})
	}
	return res
}

func MapChartDomainToApi(c domain.ChartSpec, url string) api.Chart {
	res := api.Chart{
		ID:     c.ID,
		Title:  c.Title,
		Kind:   string(c.Kind),
		Labels: append([]string{}, c.Labels...),
		Series: make([]api.Series, 0, len(c.Series)),
		Width:  c.Width,
		Height: c.Height,
		URL:    url,
	}
	for _, s := range c.Series {
		res.Series = append(res.Series, api.Series{
			Name:   s.Name,
			Data:   append([]int64{}, s.Data...),
			Colors: append([]string{}, s.Colors...),
		})
	}
	return res
}

func MapReportDomainToApi(d *domain.ReportDataset) api.Report {
	res := api.Report{
		Window:       MapWindowDomainToApi(d.Window, d.Summary),
		Summary:      d.Summary,
		Results:      make([]api.CategoryResult, 0, len(d.Results)),
		Charts:       make([]api.Chart, 0, len(d.Charts)),
		TopShipTypes: make([]api.TopGroup, 0, len(d.TopShipTypes)),
		RecordTotals: map[string]int64{},
		GeneratedAt:  d.GeneratedAt,
	}
	for _, r := range d.Results {
		res.Results = append(res.Results, MapResultDomainToApi(r))
	}
	for _, c := range d.Charts {
		res.Charts = append(res.Charts, MapChartDomainToApi(c, d.ChartURLs[c.ID]))
	}
	for _, g := range d.TopShipTypes {
		res.TopShipTypes = append(res.TopShipTypes, api.TopGroup{
			Label:    g.Label,
			Count:    g.Count,
			Dominant: g.Dominant,
		})
	}
	// copy totals as-is
	for k, v := range d.RecordTotals {
		res.RecordTotals[k] = v
	}
	return res
}
