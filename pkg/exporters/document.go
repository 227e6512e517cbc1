package exporters

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/services/filter"
)

const DocumentContentType = "text/html; charset=utf-8"

// FileName is the download name of the document exported for a summary.
func FileName(summary string) string {
	slug := filter.Slug(summary)
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("report_%s.html", slug)
}

type chartView struct {
	ID     string
	Title  string
	Source template.URL
	Width  int
	Height int
}

type documentView struct {
	Summary      string
	GeneratedAt  string
	Charts       []chartView
	Results      []domain.AggregationResult
	TopShipTypes []domain.TopGroup
	RecordTotals map[string]int64
	Listings     []domain.RecordListing
}

// Document renders a report dataset as a standalone HTML page. Rendered
// chart images are embedded as data URIs; charts that were not rendered
// fall back to their service URL.
type Document struct {
	tmpl *template.Template
}

func NewDocument() *Document {
	return &Document{
		tmpl: template.Must(template.New("document").Parse(documentTemplate)),
	}
}

func (d *Document) Render(w io.Writer, dataset *domain.ReportDataset) error {
	if dataset == nil {
		return fmt.Errorf("no report to render")
	}

	view := documentView{
		Summary:      dataset.Summary,
		GeneratedAt:  dataset.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		Results:      dataset.Results,
		TopShipTypes: dataset.TopShipTypes,
		RecordTotals: dataset.RecordTotals,
		Listings:     dataset.Listings,
	}
	for _, spec := range dataset.Charts {
		cv := chartView{ID: spec.ID, Title: spec.Title, Width: spec.Width, Height: spec.Height}
		if rendered, ok := dataset.Rendered[spec.ID]; ok {
			cv.Source = template.URL(rendered.DataURI())
		} else if u, ok := dataset.ChartURLs[spec.ID]; ok {
			cv.Source = template.URL(u)
		}
		view.Charts = append(view.Charts, cv)
	}

	if err := d.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("failed to execute document template: %w", err)
	}
	return nil
}

func (d *Document) Bytes(dataset *domain.ReportDataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf, dataset); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Maritime report - {{.Summary}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>Maritime report</h1>
<p class="summary">{{.Summary}}</p>
<p class="generated">Generated at {{.GeneratedAt}}</p>
{{range .Charts}}
<section class="chart" id="chart-{{.ID}}">
<h2>{{.Title}}</h2>
{{if .Source}}<img src="{{.Source}}" width="{{.Width}}" height="{{.Height}}" alt="{{.Title}}">{{else}}<p>Chart unavailable</p>{{end}}
</section>
{{end}}
{{if .TopShipTypes}}
<section id="top-ship-types">
<h2>Top ship types</h2>
<ol>
{{range .TopShipTypes}}<li>{{.Label}}: {{.Count}} vessels, mostly flagged {{.Dominant}}</li>
{{end}}</ol>
</section>
{{end}}
{{range .Results}}
<section class="table" id="table-{{.Category}}">
<h3>{{if .Title}}{{.Title}}{{else}}{{.Category}}{{end}}</h3>
{{if .Groups}}
<table>
<tr><th>Label</th>{{range .Measures}}<th>{{.}}</th>{{end}}</tr>
{{range .Groups}}<tr><td>{{.Label}}</td>{{range .Values}}<td class="num">{{.}}</td>{{end}}</tr>
{{end}}</table>
{{else}}<p>No data</p>{{end}}
</section>
{{end}}
{{range .Listings}}
<section class="listing" id="listing-{{.Name}}">
<h2>{{.Title}}</h2>
{{if .Rows}}
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{if .Truncated}}<p class="truncated">Only the first {{len .Rows}} records are listed.</p>{{end}}
{{else}}<p>No records</p>{{end}}
</section>
{{end}}
{{if .RecordTotals}}
<section id="record-totals">
<h2>Records</h2>
<table>
{{range $table, $count := .RecordTotals}}<tr><td>{{$table}}</td><td class="num">{{$count}}</td></tr>
{{end}}</table>
</section>
{{end}}
</body>
</html>
`
