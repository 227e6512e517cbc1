package aggregation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/de-tools/maritime-atlas/pkg/store/records"
	storesql "github.com/de-tools/maritime-atlas/pkg/store/sql"
	"github.com/rs/zerolog"
)

// TotalLabel labels the single group of ungrouped shapes.
const TotalLabel = "Total"

// AggregationError reports a failed data source query for one category.
type AggregationError struct {
	Category string
	Err      error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Category, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

type Engine interface {
	// Aggregate runs the grouped query of one category over a window.
	Aggregate(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error)
	// DominantValue returns the most frequent secondary value among the rows of
	// one group, identified by its label.
	DominantValue(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec, group string) (string, error)
	// RecordTotals counts every row of the given tables, ignoring any window.
	RecordTotals(ctx context.Context, tables []string) (map[string]int64, error)
	// Listing returns the formatted rows of a listing over a window.
	Listing(ctx context.Context, w domain.TimeWindow, spec domain.ListingSpec) (domain.RecordListing, error)
}

type engine struct {
	source records.Source
	lookup records.LabelLookup
}

func NewEngine(source records.Source, lookup records.LabelLookup) (Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("record source cannot be nil")
	}
	if lookup == nil {
		return nil, fmt.Errorf("label lookup cannot be nil")
	}
	return &engine{source: source, lookup: lookup}, nil
}

func (e *engine) Aggregate(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("category", spec.Name).Str("window", w.String()).Logger()

	result, err := e.aggregate(ctx, w, spec)
	if err == nil {
		logger.Debug().Int("groups", len(result.Groups)).Msg("category aggregated")
		return result, nil
	}

	if spec.Dynamic {
		exists, probeErr := e.source.TableExists(ctx, spec.Table)
		if probeErr == nil && !exists {
			logger.Warn().Err(err).Msg("dynamic category table is gone, reporting zero")
			return zeroResult(spec), nil
		}
	}
	return domain.AggregationResult{}, &AggregationError{Category: spec.Name, Err: err}
}

func (e *engine) aggregate(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error) {
	switch spec.Shape {
	case domain.ShapeTotals, domain.ShapeTally:
		return e.single(ctx, w, spec)
	default:
		return e.grouped(ctx, w, spec)
	}
}

func (e *engine) grouped(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error) {
	var names map[string]string
	if spec.Lookup != "" {
		var err error
		if names, err = e.lookup.Names(ctx, spec.Lookup); err != nil {
			return domain.AggregationResult{}, err
		}
	}

	rows, err := e.source.Query(ctx, storesql.Aggregate(spec, w))
	if err != nil {
		return domain.AggregationResult{}, fmt.Errorf("query %s: %w", spec.Table, err)
	}
	defer closeRows(ctx, rows)

	result := domain.NewAggregationResult(spec)
	width := len(result.Measures)
	for rows.Next() {
		var key sql.NullString
		values := make([]int64, width)
		dest := make([]any, 0, width+1)
		dest = append(dest, &key)
		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return domain.AggregationResult{}, fmt.Errorf("scan %s row: %w", spec.Table, err)
		}
		result.Add(label(key, names, spec.Lookup != ""), values...)
	}
	if err := rows.Err(); err != nil {
		return domain.AggregationResult{}, fmt.Errorf("iterate %s rows: %w", spec.Table, err)
	}
	return result, nil
}

func (e *engine) single(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec) (domain.AggregationResult, error) {
	result := domain.NewAggregationResult(spec)
	values := make([]int64, len(result.Measures))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := e.source.QueryRow(ctx, storesql.Aggregate(spec, w)).Scan(dest...); err != nil {
		return domain.AggregationResult{}, fmt.Errorf("query %s: %w", spec.Table, err)
	}
	result.Add(singleLabel(spec), values...)
	return result, nil
}

func (e *engine) DominantValue(ctx context.Context, w domain.TimeWindow, spec domain.CategorySpec, group string) (string, error) {
	if spec.Secondary == "" {
		return "", fmt.Errorf("category %s has no secondary column", spec.Name)
	}
	if spec.Lookup != "" {
		return "", fmt.Errorf("category %s groups by looked up labels", spec.Name)
	}

	var value sql.NullString
	var occurrences int64
	err := e.source.QueryRow(ctx, storesql.Dominant(spec, w, group)).Scan(&value, &occurrences)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.UnknownLabel, nil
	case err != nil:
		return "", &AggregationError{Category: spec.Name, Err: fmt.Errorf("dominant %s of %s: %w", spec.Secondary, group, err)}
	}
	return label(value, nil, false), nil
}

func (e *engine) RecordTotals(ctx context.Context, tables []string) (map[string]int64, error) {
	totals := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		if err := e.source.QueryRow(ctx, storesql.Count(table)).Scan(&n); err != nil {
			return nil, &AggregationError{Category: table, Err: fmt.Errorf("count records: %w", err)}
		}
		totals[table] = n
	}
	return totals, nil
}

func (e *engine) Listing(ctx context.Context, w domain.TimeWindow, spec domain.ListingSpec) (domain.RecordListing, error) {
	names := make([]map[string]string, len(spec.Columns))
	for i, c := range spec.Columns {
		if c.Lookup == "" {
			continue
		}
		var err error
		if names[i], err = e.lookup.Names(ctx, c.Lookup); err != nil {
			return domain.RecordListing{}, &AggregationError{Category: spec.Name, Err: err}
		}
	}

	rows, err := e.source.Query(ctx, storesql.Listing(spec, w))
	if err != nil {
		return domain.RecordListing{}, &AggregationError{Category: spec.Name, Err: fmt.Errorf("query %s: %w", spec.Table, err)}
	}
	defer closeRows(ctx, rows)

	listing := domain.NewRecordListing(spec)
	for rows.Next() {
		if len(listing.Rows) == spec.Limit {
			listing.Truncated = true
			break
		}

		cells := make([]any, len(spec.Columns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return domain.RecordListing{}, &AggregationError{Category: spec.Name, Err: fmt.Errorf("scan %s row: %w", spec.Table, err)}
		}

		row := make([]string, len(cells))
		for i, v := range cells {
			row[i] = cell(v)
			if spec.Columns[i].Lookup != "" {
				row[i] = label(sql.NullString{String: row[i], Valid: v != nil}, names[i], true)
			}
		}
		listing.Rows = append(listing.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.RecordListing{}, &AggregationError{Category: spec.Name, Err: fmt.Errorf("iterate %s rows: %w", spec.Table, err)}
	}
	return listing, nil
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(domain.DateLayout)
		}
		return t.Format("2006-01-02 15:04")
	case []byte:
		return strings.TrimSpace(string(t))
	case string:
		return strings.TrimSpace(t)
	default:
		return fmt.Sprint(t)
	}
}

func label(key sql.NullString, names map[string]string, lookup bool) string {
	raw := strings.TrimSpace(key.String)
	if !key.Valid || raw == "" {
		return domain.UnknownLabel
	}
	if !lookup {
		return raw
	}
	if name, ok := names[raw]; ok {
		return name
	}
	return domain.UnknownLabel
}

func singleLabel(spec domain.CategorySpec) string {
	if spec.Shape == domain.ShapeTally && spec.Title != "" {
		return spec.Title
	}
	return TotalLabel
}

func zeroResult(spec domain.CategorySpec) domain.AggregationResult {
	result := domain.NewAggregationResult(spec)
	if spec.Shape == domain.ShapeTotals || spec.Shape == domain.ShapeTally {
		result.Add(singleLabel(spec), make([]int64, len(result.Measures))...)
	}
	return result
}

func closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close rows")
	}
}
