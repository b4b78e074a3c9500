package model

import (
	"fmt"
	"time"
)

// Kind distinguishes intervals that cover a specific clock range from
// intervals that cover whole owner-local calendar days.
type Kind int

const (
	KindTimed Kind = iota
	KindAllDay
)

func (k Kind) String() string {
	if k == KindAllDay {
		return "all-day"
	}
	return "timed"
}

// Interval is one absolute busy range. Start/End are UTC instants and
// End is strictly after Start; zero-length intervals are discarded
// during resolution and never reach consumers.
type Interval struct {
	Start time.Time
	End   time.Time
	Kind  Kind
}

// CalendarDate is a civil date with no timezone attached. It is used for
// owner-local window anchoring and all-day resolution.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) CalendarDate {
	y, m, d := t.In(loc).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// AddDays returns the date n calendar days after d. Pure calendar
// arithmetic; no timezone is involved.
func (d CalendarDate) AddDays(n int) CalendarDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	y, m, dd := t.Date()
	return CalendarDate{Year: y, Month: m, Day: dd}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Window is the forward-looking reporting range: a span of whole
// owner-local calendar days expressed both as local dates and as a
// half-open pair of UTC instants.
type Window struct {
	StartDate        CalendarDate // first owner-local day, inclusive
	EndDateInclusive CalendarDate // last owner-local day, inclusive

	Start        time.Time // owner-local midnight of StartDate, in UTC
	EndExclusive time.Time // owner-local midnight of the day after EndDateInclusive, in UTC
}
