package domain

import (
	"fmt"
	"regexp"
)

// Shape describes how a category is aggregated.
type Shape string

const (
	// ShapeCount counts rows per group.
	ShapeCount Shape = "count"
	// ShapeSum sums numeric columns per group, alongside a distinct count.
	ShapeSum Shape = "sum"
	// ShapeTotals sums numeric columns over the whole window in a single row.
	ShapeTotals Shape = "totals"
	// ShapeTally counts rows over the whole window, ungrouped.
	ShapeTally Shape = "tally"
)

const CountMeasure = "count"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DateBinding is the column a category is filtered on: either a single
// column, or a primary column that falls back to another one when NULL.
type DateBinding struct {
	Primary  string
	Fallback string
}

func Column(name string) DateBinding {
	return DateBinding{Primary: name}
}

func Coalesce(primary, fallback string) DateBinding {
	return DateBinding{Primary: primary, Fallback: fallback}
}

func (b DateBinding) Coalesced() bool {
	return b.Fallback != ""
}

// Expr is the SQL expression the window predicate applies to.
func (b DateBinding) Expr() string {
	if b.Coalesced() {
		return fmt.Sprintf("COALESCE(%s, %s)", b.Primary, b.Fallback)
	}
	return b.Primary
}

// Measure names an aggregated column.
type Measure struct {
	Name   string
	Column string
}

// CategorySpec identifies one aggregatable slice of maritime records.
type CategorySpec struct {
	Name  string
	Title string
	Table string
	Date  DateBinding
	Shape Shape

	// GroupBy is the grouping dimension for count and sum shapes.
	GroupBy string
	// Lookup is the reference table resolving GroupBy identifiers to names.
	Lookup string
	// Distinct is counted once per group for the sum shape.
	Distinct *Measure
	Sums     []Measure
	// Secondary is the column whose most frequent value is reported per top group.
	Secondary string
	// Dynamic categories are only registered when their table exists.
	Dynamic bool
}

// Measures returns the measure names in the order values are reported.
func (c CategorySpec) Measures() []string {
	switch c.Shape {
	case ShapeSum:
		names := make([]string, 0, len(c.Sums)+1)
		if c.Distinct != nil {
			names = append(names, c.Distinct.Name)
		}
		for _, m := range c.Sums {
			names = append(names, m.Name)
		}
		return names
	case ShapeTotals:
		names := make([]string, 0, len(c.Sums))
		for _, m := range c.Sums {
			names = append(names, m.Name)
		}
		return names
	default:
		return []string{CountMeasure}
	}
}

func (c CategorySpec) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if !identifier.MatchString(c.Table) {
		return fmt.Errorf("category %s: invalid table %q", c.Name, c.Table)
	}
	if !identifier.MatchString(c.Date.Primary) {
		return fmt.Errorf("category %s: a date column binding is required", c.Name)
	}
	if c.Date.Coalesced() && !identifier.MatchString(c.Date.Fallback) {
		return fmt.Errorf("category %s: invalid fallback date column %q", c.Name, c.Date.Fallback)
	}

	switch c.Shape {
	case ShapeCount:
		if !identifier.MatchString(c.GroupBy) {
			return fmt.Errorf("category %s: invalid group column %q", c.Name, c.GroupBy)
		}
	case ShapeSum:
		if !identifier.MatchString(c.GroupBy) {
			return fmt.Errorf("category %s: invalid group column %q", c.Name, c.GroupBy)
		}
		if len(c.Sums) == 0 {
			return fmt.Errorf("category %s: sum shape requires at least one sum column", c.Name)
		}
	case ShapeTotals:
		if len(c.Sums) == 0 {
			return fmt.Errorf("category %s: totals shape requires at least one sum column", c.Name)
		}
	case ShapeTally:
	default:
		return fmt.Errorf("category %s: unknown shape %q", c.Name, c.Shape)
	}

	for _, m := range c.Sums {
		if !identifier.MatchString(m.Column) {
			return fmt.Errorf("category %s: invalid sum column %q", c.Name, m.Column)
		}
	}
	if c.Distinct != nil && !identifier.MatchString(c.Distinct.Column) {
		return fmt.Errorf("category %s: invalid distinct column %q", c.Name, c.Distinct.Column)
	}
	if c.Lookup != "" && !identifier.MatchString(c.Lookup) {
		return fmt.Errorf("category %s: invalid lookup table %q", c.Name, c.Lookup)
	}
	if c.Secondary != "" && !identifier.MatchString(c.Secondary) {
		return fmt.Errorf("category %s: invalid secondary column %q", c.Name, c.Secondary)
	}
	return nil
}
