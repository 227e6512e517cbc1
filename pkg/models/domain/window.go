package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type WindowKind string

const (
	WindowUnbounded WindowKind = "unbounded"
	WindowExactDay  WindowKind = "day"
	WindowQuarter   WindowKind = "quarter"
	WindowMonth     WindowKind = "month"
)

// quarterBounds holds the fixed calendar boundaries of each quarter.
// Every end day is valid for its month in any year, leap or not.
var quarterBounds = [4]struct {
	startMonth time.Month
	endMonth   time.Month
	endDay     int
}{
	{time.January, time.March, 31},
	{time.April, time.June, 30},
	{time.July, time.September, 30},
	{time.October, time.December, 31},
}

// TimeWindow is the resolved time filter of a report request.
// The zero value is the unbounded window.
type TimeWindow struct {
	kind WindowKind
	day  time.Time
	year int
	part int
}

func Unbounded() TimeWindow {
	return TimeWindow{kind: WindowUnbounded}
}

func ExactDay(day time.Time) TimeWindow {
	y, m, d := day.Date()
	return TimeWindow{
		kind: WindowExactDay,
		day:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		year: y,
	}
}

func Quarter(year, quarter int) (TimeWindow, error) {
	if year < 1 || year > 9999 {
		return TimeWindow{}, fmt.Errorf("invalid year: %d", year)
	}
	if quarter < 1 || quarter > 4 {
		return TimeWindow{}, fmt.Errorf("invalid quarter: %d", quarter)
	}
	return TimeWindow{kind: WindowQuarter, year: year, part: quarter}, nil
}

func Month(year, month int) (TimeWindow, error) {
	if year < 1 || year > 9999 {
		return TimeWindow{}, fmt.Errorf("invalid year: %d", year)
	}
	if month < 1 || month > 12 {
		return TimeWindow{}, fmt.Errorf("invalid month: %d", month)
	}
	return TimeWindow{kind: WindowMonth, year: year, part: month}, nil
}

func (w TimeWindow) Kind() WindowKind {
	if w.kind == "" {
		return WindowUnbounded
	}
	return w.kind
}

func (w TimeWindow) Day() time.Time { return w.day }
func (w TimeWindow) Year() int      { return w.year }

// Quarter returns the quarter number, or 0 when the window is not a quarter.
func (w TimeWindow) Quarter() int {
	if w.kind != WindowQuarter {
		return 0
	}
	return w.part
}

// Month returns the month number, or 0 when the window is not a month.
func (w TimeWindow) Month() int {
	if w.kind != WindowMonth {
		return 0
	}
	return w.part
}

// Bounds returns the inclusive date range of the window.
// ok is false for the unbounded window.
func (w TimeWindow) Bounds() (start, end time.Time, ok bool) {
	switch w.Kind() {
	case WindowExactDay:
		return w.day, w.day, true
	case WindowQuarter:
		b := quarterBounds[w.part-1]
		start = time.Date(w.year, b.startMonth, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(w.year, b.endMonth, b.endDay, 0, 0, 0, 0, time.UTC)
		return start, end, true
	case WindowMonth:
		start = time.Date(w.year, time.Month(w.part), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func (w TimeWindow) String() string {
	start, end, ok := w.Bounds()
	if !ok {
		return string(WindowUnbounded)
	}
	return fmt.Sprintf("%s[%s..%s]", w.Kind(), start.Format(DateLayout), end.Format(DateLayout))
}
