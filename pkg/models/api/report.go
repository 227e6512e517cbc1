package api

import "time"

type Window struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type Group struct {
	Label  string  `json:"label"`
	Values []int64 `json:"values"`
}

type CategoryResult struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Measures []string `json:"measures"`
	Groups   []Group  `json:"groups"`
}

type Series struct {
	Name   string   `json:"name"`
	Data   []int64  `json:"data"`
	Colors []string `json:"colors"`
}

type Chart struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Kind   string   `json:"kind"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	URL    string   `json:"url,omitempty"`
}

type TopGroup struct {
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Dominant string `json:"dominant"`
}

type Report struct {
	Window       Window           `json:"window"`
	Summary      string           `json:"summary"`
	Results      []CategoryResult `json:"results"`
	Charts       []Chart          `json:"charts"`
	TopShipTypes []TopGroup       `json:"top_ship_types"`
	RecordTotals map[string]int64 `json:"record_totals"`
	GeneratedAt  time.Time        `json:"generated_at"`
}
