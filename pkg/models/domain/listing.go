package domain

import "fmt"

// ListingColumn is one printed column of a record listing. Lookup names the
// reference table resolving the column's identifiers, if any.
type ListingColumn struct {
	Name   string
	Column string
	Lookup string
}

// ListingSpec describes the filtered rows of one table printed with an
// exported report, ordered by date then id.
type ListingSpec struct {
	Name    string
	Title   string
	Table   string
	Date    DateBinding
	Columns []ListingColumn
	// Limit caps the printed rows; the listing is marked truncated beyond it.
	Limit int
}

func (s ListingSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("listing name cannot be empty")
	}
	if !identifier.MatchString(s.Table) {
		return fmt.Errorf("listing %s: invalid table %q", s.Name, s.Table)
	}
	if !identifier.MatchString(s.Date.Primary) {
		return fmt.Errorf("listing %s: a date column binding is required", s.Name)
	}
	if s.Date.Coalesced() && !identifier.MatchString(s.Date.Fallback) {
		return fmt.Errorf("listing %s: invalid fallback date column %q", s.Name, s.Date.Fallback)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("listing %s: at least one column is required", s.Name)
	}
	for _, c := range s.Columns {
		if !identifier.MatchString(c.Column) {
			return fmt.Errorf("listing %s: invalid column %q", s.Name, c.Column)
		}
		if c.Lookup != "" && !identifier.MatchString(c.Lookup) {
			return fmt.Errorf("listing %s: invalid lookup table %q", s.Name, c.Lookup)
		}
	}
	if s.Limit <= 0 {
		return fmt.Errorf("listing %s: limit must be positive", s.Name)
	}
	return nil
}

// RecordListing holds the formatted rows of one listing.
type RecordListing struct {
	Name      string
	Title     string
	Columns   []string
	Rows      [][]string
	Truncated bool
}

func NewRecordListing(spec ListingSpec) RecordListing {
	columns := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		columns = append(columns, c.Name)
	}
	return RecordListing{Name: spec.Name, Title: spec.Title, Columns: columns, Rows: [][]string{}}
}
