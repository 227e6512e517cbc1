package sql

import (
	"testing"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilter(t *testing.T) {
	q3, err := domain.Quarter(2024, 3)
	require.NoError(t, err)
	march, err := domain.Month(2023, 3)
	require.NoError(t, err)

	coalesced := domain.Coalesce("event_date", "created_at")
	single := domain.Column("time_of_fix")

	tests := []struct {
		name       string
		window     domain.TimeWindow
		binding    domain.DateBinding
		wantClause string
		wantArgs   []any
	}{
		{
			name:    "unbounded applies no predicate",
			window:  domain.Unbounded(),
			binding: coalesced,
		},
		{
			name:       "exact day on coalesced column",
			window:     domain.ExactDay(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)),
			binding:    coalesced,
			wantClause: "CAST(COALESCE(event_date, created_at) AS DATE) = CAST(? AS DATE)",
			wantArgs:   []any{"2024-02-29"},
		},
		{
			name:       "quarter is an inclusive range",
			window:     q3,
			binding:    single,
			wantClause: "CAST(time_of_fix AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)",
			wantArgs:   []any{"2024-07-01", "2024-09-30"},
		},
		{
			name:       "month matches year and month",
			window:     march,
			binding:    coalesced,
			wantClause: "EXTRACT(YEAR FROM COALESCE(event_date, created_at)) = ? AND EXTRACT(MONTH FROM COALESCE(event_date, created_at)) = ?",
			wantArgs:   []any{2023, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := BuildFilter(tt.window, tt.binding)
			assert.Equal(t, tt.wantClause, f.Clause)
			assert.Equal(t, tt.wantArgs, f.Args)
		})
	}
}

func TestAggregate(t *testing.T) {
	day := domain.ExactDay(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	t.Run("count by group", func(t *testing.T) {
		spec := domain.CategorySpec{
			Name: "vessel_flags", Table: "fishing_vessels", Date: domain.Column("time_of_fix"),
			Shape: domain.ShapeCount, GroupBy: "flag",
		}
		q := Aggregate(spec, domain.Unbounded())
		assert.Equal(t, "SELECT flag, COUNT(*) FROM fishing_vessels GROUP BY flag", q.Text)
		assert.Empty(t, q.Args)
	})

	t.Run("sum by group with distinct count", func(t *testing.T) {
		spec := domain.CategorySpec{
			Name: "coastal_traffic", Table: "coastal_traffic", Date: domain.Column("traffic_date"),
			Shape: domain.ShapeSum, GroupBy: "origin",
			Distinct: &domain.Measure{Name: "vessels", Column: "vessel_name"},
			Sums:     []domain.Measure{{Name: "crew", Column: "crew"}, {Name: "passengers", Column: "passengers"}},
		}
		q := Aggregate(spec, day)
		assert.Equal(t,
			"SELECT origin, COUNT(DISTINCT vessel_name), CAST(COALESCE(SUM(crew), 0) AS BIGINT), CAST(COALESCE(SUM(passengers), 0) AS BIGINT) FROM coastal_traffic WHERE CAST(traffic_date AS DATE) = CAST(? AS DATE) GROUP BY origin",
			q.Text)
		assert.Equal(t, []any{"2024-01-05"}, q.Args)
	})

	t.Run("tally", func(t *testing.T) {
		spec := domain.CategorySpec{Name: "zone_2", Table: "zone_2", Date: domain.Column("time_of_fix"), Shape: domain.ShapeTally}
		q := Aggregate(spec, day)
		assert.Equal(t, "SELECT COUNT(*) FROM zone_2 WHERE CAST(time_of_fix AS DATE) = CAST(? AS DATE)", q.Text)
	})
}

func TestDominant(t *testing.T) {
	spec := domain.CategorySpec{
		Name: "vessel_types", Table: "eez_vessels", Date: domain.Column("time_of_fix"),
		Shape: domain.ShapeCount, GroupBy: "ship_type", Secondary: "flag",
	}

	q := Dominant(spec, domain.Unbounded(), "Tanker")
	assert.Equal(t,
		"SELECT NULLIF(TRIM(flag), '') AS dominant_value, COUNT(*) AS occurrences FROM eez_vessels WHERE TRIM(ship_type) = ? "+
			"GROUP BY NULLIF(TRIM(flag), '') ORDER BY occurrences DESC, dominant_value ASC LIMIT 1",
		q.Text)
	assert.Equal(t, []any{"Tanker"}, q.Args)

	q = Dominant(spec, domain.ExactDay(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)), domain.UnknownLabel)
	assert.Contains(t, q.Text,
		"WHERE CAST(time_of_fix AS DATE) = CAST(? AS DATE) AND (NULLIF(TRIM(ship_type), '') IS NULL OR TRIM(ship_type) = ?)")
	assert.Equal(t, []any{"2024-01-05", "Unknown"}, q.Args)
}

func TestListing(t *testing.T) {
	spec := domain.ListingSpec{
		Name: "sar_reports", Table: "sar_reports", Date: domain.Coalesce("event_date", "created_at"),
		Columns: []domain.ListingColumn{{Name: "Report", Column: "id"}, {Name: "Type", Column: "event_type_id", Lookup: "event_types"}},
		Limit:   50,
	}

	q := Listing(spec, domain.Unbounded())
	assert.Equal(t,
		"SELECT id, event_type_id FROM sar_reports ORDER BY COALESCE(event_date, created_at) ASC, id ASC LIMIT 51",
		q.Text)
	assert.Empty(t, q.Args)

	w, err := domain.Month(2024, 5)
	require.NoError(t, err)
	q = Listing(spec, w)
	assert.Contains(t, q.Text, "WHERE EXTRACT(YEAR FROM COALESCE(event_date, created_at)) = ?")
	assert.Equal(t, []any{2024, 5}, q.Args)
}

func TestFilter_AndDoesNotShareArgs(t *testing.T) {
	base := Filter{Clause: "a = ?", Args: make([]any, 1, 4)}
	base.Args[0] = 1

	left := base.And("b = ?", 2)
	right := base.And("c = ?", 3)

	assert.Equal(t, []any{1, 2}, left.Args)
	assert.Equal(t, []any{1, 3}, right.Args)
	assert.Equal(t, []any{1}, base.Args)
}

func TestRebind(t *testing.T) {
	text := "SELECT a FROM t WHERE x = ? AND y BETWEEN ? AND ?"
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y BETWEEN $2 AND $3", Rebind(DialectPostgres, text))
	assert.Equal(t, text, Rebind(DialectDuckDB, text))
	assert.Equal(t, text, Rebind(DialectSnowflake, text))
}
