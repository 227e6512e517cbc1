package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
)

type TableConfig struct {
	LabelWidth int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 32,
		ValueWidth: 16,
	}
}

// Reporter prints a report dataset as plain-text tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
	tmpl   *template.Template
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
	r.tmpl = template.Must(template.New("report").Funcs(r.funcs()).Parse(reportTemplate))
	return r
}

const reportTemplate = `
{{.Summary}}
Generated at: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
{{range .Results}}
=== {{heading .}} ===
{{if .Groups}}{{separator (len .Measures)}}
{{header .Measures}}
{{separator (len .Measures)}}
{{range .Groups}}{{row .Label .Values}}
{{end}}{{separator (len .Measures)}}
{{else}}No data
{{end}}{{end}}
{{if .TopShipTypes}}=== Top ship types ===
{{range $i, $g := .TopShipTypes}}{{inc $i}}. {{$g.Label}}: {{$g.Count}} (mostly {{$g.Dominant}})
{{end}}{{end}}
{{if .RecordTotals}}=== Records ===
{{range $table, $count := .RecordTotals}}{{$table}}: {{$count}}
{{end}}{{end}}`

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading": func(r domain.AggregationResult) string {
			if r.Title != "" {
				return r.Title
			}
			return r.Category
		},
		"header": func(measures []string) string {
			values := make([]any, len(measures))
			for i, m := range measures {
				values[i] = m
			}
			return c.formatRow("Label", values)
		},
		"row": func(label string, values []int64) string {
			cells := make([]any, len(values))
			for i, v := range values {
				cells[i] = v
			}
			return c.formatRow(label, cells)
		},
		"separator": func(columns int) string {
			var b strings.Builder
			b.WriteString("+" + strings.Repeat("-", c.config.LabelWidth+2) + "+")
			for i := 0; i < columns; i++ {
				b.WriteString(strings.Repeat("-", c.config.ValueWidth+2) + "+")
			}
			return b.String()
		},
		"inc": func(i int) int { return i + 1 },
	}
}

func (c *Reporter) formatRow(label string, values []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "| %-*s |", c.config.LabelWidth, label)
	for _, v := range values {
		fmt.Fprintf(&b, " %*v |", c.config.ValueWidth, v)
	}
	return b.String()
}

func (c *Reporter) Handle(dataset *domain.ReportDataset) error {
	if dataset == nil {
		return fmt.Errorf("no report to print")
	}
	if err := c.tmpl.Execute(c.writer, dataset); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
