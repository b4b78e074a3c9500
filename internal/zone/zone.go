package zone

import (
	"errors"
	"fmt"
	"time"

	"busyfeed/internal/model"
)

// ErrInvalidZone is returned when an IANA timezone identifier cannot be
// loaded from the system tz database. Callers decide whether this is
// fatal (explicit TZID on a feed value) or recoverable (configured
// owner/default zone, which degrades to UTC).
var ErrInvalidZone = errors.New("invalid timezone identifier")

// Load resolves an IANA timezone name. Empty names are rejected rather
// than being treated as time.Local; the engine never depends on the
// process-local zone.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidZone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidZone, name)
	}
	return loc, nil
}

// LocalToInstant converts civil date/time fields observed in loc to an
// absolute instant. The conversion is DST-correct: the same wall-clock
// fields on different dates can resolve with different UTC offsets.
//
// At a spring-forward gap or fall-back overlap the local fields do not
// name a unique instant; time.Date picks one of the valid candidates
// deterministically and we keep that choice (documented in DESIGN.md
// and pinned by a test).
func LocalToInstant(d model.CalendarDate, hour, min, sec int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, min, sec, 0, loc).UTC()
}

// Midnight returns the instant of owner-local midnight beginning d.
func Midnight(d model.CalendarDate, loc *time.Location) time.Time {
	return LocalToInstant(d, 0, 0, 0, loc)
}

// FixedOffsetToInstant converts civil fields carrying an explicit
// ±HHMM suffix. Plain offset arithmetic; no DST is involved.
func FixedOffsetToInstant(d model.CalendarDate, hour, min, sec int, sign int, offHour, offMin int) time.Time {
	off := sign * (offHour*3600 + offMin*60)
	loc := time.FixedZone("", off)
	return time.Date(d.Year, d.Month, d.Day, hour, min, sec, 0, loc).UTC()
}
