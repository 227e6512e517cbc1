package domain

import (
	"encoding/base64"
	"time"
)

const UnknownLabel = "Unknown"

// Group is one labelled row of an aggregation, values aligned with Measures.
type Group struct {
	Label  string
	Values []int64
}

// AggregationResult holds the groups of one category in discovery order.
type AggregationResult struct {
	Category string
	Title    string
	Measures []string
	Groups   []Group
}

func NewAggregationResult(spec CategorySpec) AggregationResult {
	return AggregationResult{
		Category: spec.Name,
		Title:    spec.Title,
		Measures: spec.Measures(),
		Groups:   []Group{},
	}
}

// Add appends a group, merging values into an existing group with the same label.
func (r *AggregationResult) Add(label string, values ...int64) {
	for i := range r.Groups {
		if r.Groups[i].Label == label {
			for j := range values {
				r.Groups[i].Values[j] += values[j]
			}
			return
		}
	}
	r.Groups = append(r.Groups, Group{Label: label, Values: append([]int64(nil), values...)})
}

func (r AggregationResult) Labels() []string {
	labels := make([]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		labels = append(labels, g.Label)
	}
	return labels
}

// Column returns the values of the measure at index i, one per group.
func (r AggregationResult) Column(i int) []int64 {
	values := make([]int64, 0, len(r.Groups))
	for _, g := range r.Groups {
		values = append(values, g.Values[i])
	}
	return values
}

func (r AggregationResult) Total(i int) int64 {
	var total int64
	for _, g := range r.Groups {
		total += g.Values[i]
	}
	return total
}

func (r AggregationResult) Empty() bool {
	return len(r.Groups) == 0
}

type ChartKind string

const ChartBar ChartKind = "bar"

type Series struct {
	Name   string
	Data   []int64
	Colors []string
}

type ChartOptions struct {
	YMin    int
	Stacked bool
}

// ChartSpec is a renderer-agnostic chart description.
type ChartSpec struct {
	ID      string
	Title   string
	Kind    ChartKind
	Labels  []string
	Series  []Series
	Options ChartOptions
	Width   int
	Height  int
}

// Aligned reports whether every series has one value per label.
func (c ChartSpec) Aligned() bool {
	for _, s := range c.Series {
		if len(s.Data) != len(c.Labels) {
			return false
		}
	}
	return true
}

// RenderedChart is the image returned by the rendering service for one chart.
type RenderedChart struct {
	ChartID     string
	ContentType string
	Image       []byte
}

func (r RenderedChart) DataURI() string {
	return "data:" + r.ContentType + ";base64," + base64.StdEncoding.EncodeToString(r.Image)
}

// TopGroup is one of the highest-count groups of a category, with the most
// frequent value of its secondary column.
type TopGroup struct {
	Label    string
	Count    int64
	Dominant string
}

// ReportDataset is the composed report. It is never mutated once built.
type ReportDataset struct {
	Window       TimeWindow
	Summary      string
	Results      []AggregationResult
	Charts       []ChartSpec
	ChartURLs    map[string]string
	Rendered     map[string]RenderedChart
	TopShipTypes []TopGroup
	RecordTotals map[string]int64
	// Listings are only filled for exported reports.
	Listings    []RecordListing
	GeneratedAt time.Time
}

func (d *ReportDataset) Result(category string) (AggregationResult, bool) {
	for _, r := range d.Results {
		if r.Category == category {
			return r, true
		}
	}
	return AggregationResult{}, false
}
