package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity time point (attendance is a per-day system)
// =============================================================================

// Date identifies a single calendar day in UTC. All attendance facts,
// windows, and strike events are keyed by Date.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now().UTC()) }

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MonthYear renders the date's month for remarks, e.g. "March 2025".
func (d Date) MonthYear() string { return d.t.Format("January 2006") }

// =============================================================================
// MONTH WINDOWS - Counting windows reset at calendar month boundaries
// =============================================================================

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date { return NewDate(d.Year(), d.Month(), 1) }

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 1).AddDays(-1)
}

// Window is an inclusive date range over which strikes are counted.
// Windows never span a month boundary; the orchestrator constructs one
// window per calendar month so counters reset by construction.
type Window struct {
	Start Date
	End   Date
}

func (w Window) Contains(d Date) bool {
	return w.Start.BeforeOrEqual(d) && d.BeforeOrEqual(w.End)
}

func (w Window) IsValid() bool {
	return !w.Start.IsZero() && w.Start.BeforeOrEqual(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start, w.End)
}

// MonthWindows splits [from, to] into per-calendar-month windows,
// clamped to the overall range. Returns nil when from is after to.
func MonthWindows(from, to Date) []Window {
	if from.After(to) {
		return nil
	}
	var windows []Window
	cursor := from
	for cursor.BeforeOrEqual(to) {
		end := cursor.EndOfMonth()
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{Start: cursor, End: end})
		cursor = cursor.StartOfMonth().AddMonths(1)
	}
	return windows
}
