package render

import (
	"encoding/json"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
)

// Chart.js v3 configuration, as understood by QuickChart.
type chartConfig struct {
	Type    string       `json:"type"`
	Data    chartData    `json:"data"`
	Options chartOptions `json:"options"`
}

type chartData struct {
	Labels   []string  `json:"labels"`
	Datasets []dataset `json:"datasets"`
}

type dataset struct {
	Label           string   `json:"label"`
	Data            []int64  `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
	BorderWidth     int      `json:"borderWidth,omitempty"`
}

type chartOptions struct {
	Plugins plugins         `json:"plugins"`
	Scales  map[string]axis `json:"scales"`
}

type plugins struct {
	Title  title  `json:"title"`
	Legend legend `json:"legend"`
}

type title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type legend struct {
	Display bool `json:"display"`
}

type axis struct {
	BeginAtZero bool `json:"beginAtZero,omitempty"`
	Min         *int `json:"min,omitempty"`
	Stacked     bool `json:"stacked,omitempty"`
}

// Config encodes a chart spec as Chart.js JSON.
func Config(spec domain.ChartSpec) ([]byte, error) {
	datasets := make([]dataset, 0, len(spec.Series))
	for _, s := range spec.Series {
		d := dataset{
			Label:           s.Name,
			Data:            s.Data,
			BackgroundColor: s.Colors,
		}
		if d.Data == nil {
			d.Data = []int64{}
		}
		if len(spec.Series) > 1 {
			d.BorderWidth = 1
		}
		datasets = append(datasets, d)
	}

	labels := spec.Labels
	if labels == nil {
		labels = []string{}
	}

	yMin := spec.Options.YMin
	return json.Marshal(chartConfig{
		Type: string(spec.Kind),
		Data: chartData{Labels: labels, Datasets: datasets},
		Options: chartOptions{
			Plugins: plugins{
				Title:  title{Display: spec.Title != "", Text: spec.Title},
				Legend: legend{Display: len(spec.Series) > 1},
			},
			Scales: map[string]axis{
				"x": {Stacked: spec.Options.Stacked},
				"y": {BeginAtZero: true, Min: &yMin, Stacked: spec.Options.Stacked},
			},
		},
	})
}
