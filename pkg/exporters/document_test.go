package exporters

import (
	"testing"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *domain.ReportDataset {
	w, _ := domain.Quarter(2024, 2)
	return &domain.ReportDataset{
		Window:  w,
		Summary: "Year 2024 - 2nd quarter",
		Results: []domain.AggregationResult{
			{
				Category: "event_types",
				Title:    "Events by type",
				Measures: []string{"count"},
				Groups:   []domain.Group{{Label: "Rescue", Values: []int64{2}}, {Label: "Unknown", Values: []int64{1}}},
			},
			{
				Category: "event_causes",
				Title:    "Events by cause",
				Measures: []string{"count"},
				Groups:   []domain.Group{},
			},
		},
		Charts: []domain.ChartSpec{
			{ID: "event_types", Title: "Events by type", Width: 500, Height: 200},
			{ID: "event_causes", Title: "Events by cause", Width: 500, Height: 200},
		},
		Rendered: map[string]domain.RenderedChart{
			"event_types": {ChartID: "event_types", ContentType: "image/png", Image: []byte("png")},
		},
		ChartURLs:    map[string]string{"event_causes": "https://quickchart.io/chart?c=%7B%7D"},
		TopShipTypes: []domain.TopGroup{{Label: "Tanker", Count: 2, Dominant: "PT"}},
		RecordTotals: map[string]int64{"sar_reports": 4},
		Listings: []domain.RecordListing{
			{
				Name: "sar_reports", Title: "SAR reports", Columns: []string{"Report", "Type"},
				Rows: [][]string{{"1", "Rescue"}, {"2", "Unknown"}}, Truncated: true,
			},
			{Name: "patrol_sorties", Title: "Patrol sorties", Columns: []string{"Date"}, Rows: [][]string{}},
		},
		GeneratedAt:  time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "report_year-2024-2nd-quarter.html", FileName("Year 2024 - 2nd quarter"))
	assert.Equal(t, "report_all-data.html", FileName("All data"))
	assert.Equal(t, "report_report.html", FileName(""))
}

func TestDocument_Render(t *testing.T) {
	out, err := NewDocument().Bytes(sampleDataset())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Maritime report - Year 2024 - 2nd quarter</title>")
	assert.Contains(t, html, `src="data:image/png;base64,cG5n"`)
	assert.Contains(t, html, `src="https://quickchart.io/chart?c=%7B%7D"`)
	assert.Contains(t, html, "Tanker: 2 vessels, mostly flagged PT")
	assert.Contains(t, html, `<td>Rescue</td><td class="num">2</td>`)
	assert.Contains(t, html, "<td>sar_reports</td>")
	assert.NotContains(t, html, "ZgotmplZ")

	assert.Contains(t, html, "<tr><th>Report</th><th>Type</th></tr>")
	assert.Contains(t, html, "<tr><td>2</td><td>Unknown</td></tr>")
	assert.Contains(t, html, "Only the first 2 records are listed.")
	assert.Contains(t, html, "<h2>Patrol sorties</h2>\n<p>No records</p>")
}

func TestDocument_EscapesLabels(t *testing.T) {
	dataset := sampleDataset()
	dataset.Results[0].Groups[0].Label = "<script>alert(1)</script>"

	out, err := NewDocument().Bytes(dataset)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestDocument_NilDataset(t *testing.T) {
	_, err := NewDocument().Bytes(nil)
	assert.Error(t, err)
}
