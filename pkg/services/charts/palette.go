package charts

import (
	"sort"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
)

// Palette is the fixed color sequence assigned to bars and series.
var Palette = []string{
	"#4CAF50", "#2196F3", "#FF9800", "#F44336", "#9C27B0",
	"#795548", "#E91E63", "#00BCD4", "#FFEB3B", "#009688",
}

// Colors assigns n colors positionally, cycling through the palette.
func Colors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}
	return colors
}

// TopN returns the n groups with the highest first measure, ties kept in
// discovery order.
func TopN(result domain.AggregationResult, n int) []domain.Group {
	groups := append([]domain.Group(nil), result.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Values[0] > groups[j].Values[0]
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
