// Package busy computes the reporting window and reduces resolved
// intervals to a minimal, sorted, disjoint busy set.
package busy

import (
	"fmt"
	"time"

	"busyfeed/internal/model"
	"busyfeed/internal/zone"
)

const (
	MinWeeks = 1
	MaxWeeks = 104
)

// BuildWindow anchors a reporting window of whole owner-local calendar
// weeks to "today" in the owner zone at the given instant. The result
// is half-open: [Start, EndExclusive).
//
// The UTC duration of the window may differ from weeks*7*24h when a
// DST transition falls inside it; the window spans local days, not a
// fixed number of hours.
func BuildWindow(weeks int, now time.Time, owner *time.Location) (model.Window, error) {
	if owner == nil {
		return model.Window{}, fmt.Errorf("busy: owner zone is required")
	}
	if weeks < MinWeeks || weeks > MaxWeeks {
		return model.Window{}, fmt.Errorf("busy: weeks %d out of range [%d, %d]", weeks, MinWeeks, MaxWeeks)
	}

	today := model.DateOf(now, owner)
	endInclusive := today.AddDays(weeks*7 - 1)

	return model.Window{
		StartDate:        today,
		EndDateInclusive: endInclusive,
		Start:            zone.Midnight(today, owner),
		EndExclusive:     zone.Midnight(endInclusive.AddDays(1), owner),
	}, nil
}
