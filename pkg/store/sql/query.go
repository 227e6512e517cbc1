package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
)

type Dialect string

const (
	DialectDuckDB     Dialect = "duckdb"
	DialectPostgres   Dialect = "postgres"
	DialectDatabricks Dialect = "databricks"
	DialectSnowflake  Dialect = "snowflake"
)

// Query is a SQL statement with positional `?` placeholders.
type Query struct {
	Text string
	Args []any
}

// Filter is the window predicate of one category, empty for the unbounded window.
type Filter struct {
	Clause string
	Args   []any
}

// BuildFilter derives the window predicate for a date binding. It never
// mutates its inputs, so it is safe to call once per category.
func BuildFilter(w domain.TimeWindow, binding domain.DateBinding) Filter {
	col := binding.Expr()

	switch w.Kind() {
	case domain.WindowExactDay:
		return Filter{
			Clause: fmt.Sprintf("CAST(%s AS DATE) = CAST(? AS DATE)", col),
			Args:   []any{w.Day().Format(domain.DateLayout)},
		}
	case domain.WindowQuarter:
		start, end, _ := w.Bounds()
		return Filter{
			Clause: fmt.Sprintf("CAST(%s AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)", col),
			Args:   []any{start.Format(domain.DateLayout), end.Format(domain.DateLayout)},
		}
	case domain.WindowMonth:
		return Filter{
			Clause: fmt.Sprintf("EXTRACT(YEAR FROM %[1]s) = ? AND EXTRACT(MONTH FROM %[1]s) = ?", col),
			Args:   []any{w.Year(), w.Month()},
		}
	default:
		return Filter{}
	}
}

func (f Filter) Empty() bool {
	return f.Clause == ""
}

// And appends another condition to the filter.
func (f Filter) And(clause string, args ...any) Filter {
	if f.Empty() {
		return Filter{Clause: clause, Args: args}
	}
	return Filter{
		Clause: f.Clause + " AND " + clause,
		Args:   append(append([]any{}, f.Args...), args...),
	}
}

func (f Filter) where() string {
	if f.Empty() {
		return ""
	}
	return " WHERE " + f.Clause
}

// Aggregate builds the aggregation statement of a category for a window.
func Aggregate(spec domain.CategorySpec, w domain.TimeWindow) Query {
	f := BuildFilter(w, spec.Date)

	switch spec.Shape {
	case domain.ShapeCount:
		return Query{
			Text: fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM %[2]s%[3]s GROUP BY %[1]s",
				spec.GroupBy, spec.Table, f.where()),
			Args: f.Args,
		}
	case domain.ShapeSum:
		cols := []string{spec.GroupBy}
		if spec.Distinct != nil {
			cols = append(cols, fmt.Sprintf("COUNT(DISTINCT %s)", spec.Distinct.Column))
		}
		cols = append(cols, sumColumns(spec.Sums)...)
		return Query{
			Text: fmt.Sprintf("SELECT %s FROM %s%s GROUP BY %s",
				strings.Join(cols, ", "), spec.Table, f.where(), spec.GroupBy),
			Args: f.Args,
		}
	case domain.ShapeTotals:
		return Query{
			Text: fmt.Sprintf("SELECT %s FROM %s%s",
				strings.Join(sumColumns(spec.Sums), ", "), spec.Table, f.where()),
			Args: f.Args,
		}
	default:
		return Query{
			Text: fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.Table, f.where()),
			Args: f.Args,
		}
	}
}

// Dominant builds the statement returning the most frequent value of the
// secondary column among the rows of one group. The group is matched on its
// display label: values are trimmed, and the unknown label also matches NULL
// and blank values. Secondary values are trimmed the same way.
func Dominant(spec domain.CategorySpec, w domain.TimeWindow, group string) Query {
	f := BuildFilter(w, spec.Date)
	if group == domain.UnknownLabel {
		f = f.And(fmt.Sprintf("(NULLIF(TRIM(%[1]s), '') IS NULL OR TRIM(%[1]s) = ?)", spec.GroupBy), group)
	} else {
		f = f.And(fmt.Sprintf("TRIM(%s) = ?", spec.GroupBy), group)
	}

	value := fmt.Sprintf("NULLIF(TRIM(%s), '')", spec.Secondary)
	return Query{
		Text: fmt.Sprintf("SELECT %[1]s AS dominant_value, COUNT(*) AS occurrences FROM %[2]s%[3]s GROUP BY %[1]s ORDER BY occurrences DESC, dominant_value ASC LIMIT 1",
			value, spec.Table, f.where()),
		Args: f.Args,
	}
}

// Listing builds the statement selecting the printed columns of a listing
// over a window. One row past the limit is fetched to detect truncation.
func Listing(spec domain.ListingSpec, w domain.TimeWindow) Query {
	f := BuildFilter(w, spec.Date)
	cols := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		cols = append(cols, c.Column)
	}

	return Query{
		Text: fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s ASC, id ASC LIMIT %d",
			strings.Join(cols, ", "), spec.Table, f.where(), spec.Date.Expr(), spec.Limit+1),
		Args: f.Args,
	}
}

// Count builds an unfiltered row count of a table.
func Count(table string) Query {
	return Query{Text: "SELECT COUNT(*) FROM " + table}
}

// TableExists builds the existence probe for a table.
func TableExists(table string) Query {
	return Query{
		Text: "SELECT COUNT(*) FROM information_schema.tables WHERE LOWER(table_name) = LOWER(?)",
		Args: []any{table},
	}
}

// Rebind rewrites `?` placeholders into the dialect's placeholder syntax.
func Rebind(d Dialect, text string) string {
	if d != DialectPostgres {
		return text
	}

	var b strings.Builder
	n := 0
	for _, r := range text {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sumColumns(sums []domain.Measure) []string {
	cols := make([]string, 0, len(sums))
	for _, m := range sums {
		cols = append(cols, fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS BIGINT)", m.Column))
	}
	return cols
}
