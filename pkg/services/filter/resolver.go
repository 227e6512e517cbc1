package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/zeebo/xxh3"
)

const (
	ParamDate        = "filter_date"
	ParamQuarterYear = "filter_year_quarter"
	ParamQuarter     = "filter_quarter"
	ParamMonthYear   = "filter_year_month"
	ParamMonth       = "filter_month"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Params holds the raw filter inputs exactly as received.
type Params struct {
	Date        string
	QuarterYear string
	Quarter     string
	MonthYear   string
	Month       string
}

func ParamsFromValues(values url.Values) Params {
	return Params{
		Date:        values.Get(ParamDate),
		QuarterYear: values.Get(ParamQuarterYear),
		Quarter:     values.Get(ParamQuarter),
		MonthYear:   values.Get(ParamMonthYear),
		Month:       values.Get(ParamMonth),
	}
}

func (p Params) Values() url.Values {
	return url.Values{
		ParamDate:        {p.Date},
		ParamQuarterYear: {p.QuarterYear},
		ParamQuarter:     {p.Quarter},
		ParamMonthYear:   {p.MonthYear},
		ParamMonth:       {p.Month},
	}
}

// Fingerprint hashes the filter inputs serialized with keys in sorted order,
// so the order parameters arrived in does not matter.
func (p Params) Fingerprint() string {
	h := xxh3.HashString128(p.Values().Encode())
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

// Resolve turns raw filter inputs into a time window. Only one mode is
// honored: exact date, then quarter, then month. Malformed inputs fall
// through to the next mode and finally to the unbounded window.
func Resolve(p Params) domain.TimeWindow {
	if p.Date != "" {
		if day, err := time.Parse(domain.DateLayout, strings.TrimSpace(p.Date)); err == nil {
			return domain.ExactDay(day)
		}
	}

	if year, ok := atoi(p.QuarterYear); ok {
		if q, ok := atoi(p.Quarter); ok {
			if w, err := domain.Quarter(year, q); err == nil {
				return w
			}
		}
	}

	if year, ok := atoi(p.MonthYear); ok {
		if m, ok := atoi(p.Month); ok {
			if w, err := domain.Month(year, m); err == nil {
				return w
			}
		}
	}

	return domain.Unbounded()
}

// Summary is the human-readable label of a window, shown on screen and
// used in export file names.
func Summary(w domain.TimeWindow) string {
	switch w.Kind() {
	case domain.WindowExactDay:
		return "Data of " + w.Day().Format(domain.DateLayout)
	case domain.WindowQuarter:
		return fmt.Sprintf("Year %d - %s quarter", w.Year(), ordinal(w.Quarter()))
	case domain.WindowMonth:
		return fmt.Sprintf("Year %d - month of %s", w.Year(), monthNames[w.Month()-1])
	default:
		return "All data"
	}
}

// Slug turns a summary into a lowercase file-name-safe token.
func Slug(summary string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(summary) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return strconv.Itoa(n) + "th"
	}
}

func atoi(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
