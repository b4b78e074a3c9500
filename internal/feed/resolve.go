package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	appLog "busyfeed/internal/log"
	"busyfeed/internal/model"
	"busyfeed/internal/zone"
)

// ErrInvalidTimeZone aborts the whole parse. It is raised only for an
// explicitly named TZID that cannot be resolved: an explicit,
// unambiguous request must never be silently mis-resolved.
var ErrInvalidTimeZone = errors.New("feed: invalid explicit timezone")

// errFieldUnresolved marks a single unparseable date/time field. The
// owning period or event is dropped; the rest of the feed continues.
var errFieldUnresolved = errors.New("field unresolved")

const (
	layoutDate      = "20060102"
	layoutDateTime  = "20060102T150405"
	layoutDateTimeZ = "20060102T150405Z"
)

// rawValue is a date/time field as it appears on the wire, before
// timezone resolution. It never escapes the parse phase.
type rawValue struct {
	value    string
	tzid     string // explicit TZID parameter, "" if absent
	dateOnly bool   // VALUE=DATE parameter was present
}

// resolved is the absolute form of a rawValue.
type resolved struct {
	at     time.Time
	allDay bool
}

// resolveValue turns one raw date/time value plus its timezone context
// into a UTC instant, per variant:
//
//   - pure date (VALUE=DATE or no time part): owner-local midnight;
//     without an owner zone the field fails
//   - trailing Z: UTC directly, any TZID ignored
//   - trailing ±HHMM: fixed-offset arithmetic
//   - floating with TZID: zone conversion; unknown zone fails the feed
//   - floating without TZID: owner zone when fallback is enabled, else UTC
func resolveValue(rv rawValue, opts Options) (resolved, error) {
	v := strings.TrimSpace(rv.value)
	if v == "" {
		return resolved{}, fmt.Errorf("%w: empty value", errFieldUnresolved)
	}

	if rv.dateOnly || !strings.ContainsAny(v, "Tt") {
		return resolveDate(v, opts)
	}

	if strings.HasSuffix(v, "Z") || strings.HasSuffix(v, "z") {
		t, err := time.Parse(layoutDateTimeZ, strings.ToUpper(v))
		if err != nil {
			return resolved{}, fmt.Errorf("%w: %v", errFieldUnresolved, err)
		}
		if rv.tzid != "" {
			appLog.Debug("feed: TZID ignored on UTC-marked value", "tzid", rv.tzid)
		}
		return resolved{at: t.UTC()}, nil
	}

	if base, sign, offH, offM, ok := splitFixedOffset(v); ok {
		if offH > 23 || offM > 59 {
			return resolved{}, fmt.Errorf("%w: offset out of range", errFieldUnresolved)
		}
		t, err := time.Parse(layoutDateTime, base)
		if err != nil {
			return resolved{}, fmt.Errorf("%w: %v", errFieldUnresolved, err)
		}
		d := model.CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
		hh, mm, ss := t.Clock()
		return resolved{at: zone.FixedOffsetToInstant(d, hh, mm, ss, sign, offH, offM)}, nil
	}

	// Floating date-time.
	t, err := time.Parse(layoutDateTime, v)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %v", errFieldUnresolved, err)
	}
	loc, err := floatingLocation(rv.tzid, opts)
	if err != nil {
		return resolved{}, err
	}
	d := model.CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	hh, mm, ss := t.Clock()
	return resolved{at: zone.LocalToInstant(d, hh, mm, ss, loc)}, nil
}

// resolveDate handles the all-day variant: the value names an owner-local
// calendar day, so an owner/default zone is required.
func resolveDate(v string, opts Options) (resolved, error) {
	t, err := time.Parse(layoutDate, v)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %v", errFieldUnresolved, err)
	}
	if opts.OwnerZone == nil {
		return resolved{}, fmt.Errorf("%w: date value without owner zone", errFieldUnresolved)
	}
	d := model.CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return resolved{at: zone.Midnight(d, opts.OwnerZone), allDay: true}, nil
}

// floatingLocation decides which zone a floating date-time is read in.
func floatingLocation(tzid string, opts Options) (*time.Location, error) {
	if tzid != "" {
		loc, err := zone.Load(tzid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, tzid)
		}
		return loc, nil
	}
	if opts.DefaultTZFallback && opts.OwnerZone != nil {
		return opts.OwnerZone, nil
	}
	opts.warnf("floating time treated as UTC")
	return time.UTC, nil
}

// splitFixedOffset detects a ±HHMM suffix on a basic date-time value
// and splits it off. Returns ok=false when no such suffix is present.
func splitFixedOffset(v string) (base string, sign, offH, offM int, ok bool) {
	if len(v) < 6 {
		return "", 0, 0, 0, false
	}
	tail := v[len(v)-5:]
	switch tail[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return "", 0, 0, 0, false
	}
	for _, c := range tail[1:] {
		if c < '0' || c > '9' {
			return "", 0, 0, 0, false
		}
	}
	offH = int(tail[1]-'0')*10 + int(tail[2]-'0')
	offM = int(tail[3]-'0')*10 + int(tail[4]-'0')
	return v[:len(v)-5], sign, offH, offM, true
}
