package feed

import (
	"strings"
	"time"

	"busyfeed/internal/model"
	"busyfeed/internal/zone"
)

// eventBlock accumulates the scheduling properties of one VEVENT while
// its lines stream past. First occurrence of each property wins.
type eventBlock struct {
	start   *rawValue
	end     *rawValue
	durRaw  string
	durSeen bool
}

func (e *eventBlock) take(name string, params map[string]string, value string) {
	switch name {
	case "DTSTART":
		if e.start == nil {
			e.start = propertyValue(params, value)
		}
	case "DTEND":
		if e.end == nil {
			e.end = propertyValue(params, value)
		}
	case "DURATION":
		if !e.durSeen {
			e.durRaw = value
			e.durSeen = true
		}
	}
}

func propertyValue(params map[string]string, value string) *rawValue {
	rv := rawValue{value: value, tzid: params["TZID"]}
	if strings.EqualFold(params["VALUE"], "DATE") {
		rv.dateOnly = true
	}
	return &rv
}

// resolve turns the accumulated block into at most one interval. End
// resolution order, evaluated once per block: explicit DTEND, then
// DTSTART+DURATION, then the default length (one owner-local day for
// all-day, one hour for timed). A block without a resolvable start
// contributes nothing.
func (e *eventBlock) resolve(opts Options) (*model.Interval, error) {
	if e.start == nil {
		return nil, nil
	}

	start, err := resolveValue(*e.start, opts)
	if err != nil {
		return nil, err
	}

	var end time.Time
	switch {
	case e.end != nil:
		endRes, err := resolveValue(*e.end, opts)
		if err != nil {
			return nil, err
		}
		end = endRes.at
	case e.durSeen:
		dur, err := ParseDuration(e.durRaw)
		if err != nil {
			return nil, err
		}
		end = start.at.Add(dur)
	case start.allDay:
		end = nextLocalMidnight(start.at, opts)
	default:
		end = start.at.Add(time.Hour)
	}

	// An all-day event collapsing to zero length still occupies its day.
	// An end strictly before the start is left alone and discarded below.
	if start.allDay && end.Equal(start.at) {
		end = nextLocalMidnight(start.at, opts)
	}

	return makeInterval(start, end), nil
}

// nextLocalMidnight returns owner-local midnight of the day after the
// day containing t. Owner zone is present whenever an all-day start
// resolved, since date resolution requires it.
func nextLocalMidnight(t time.Time, opts Options) time.Time {
	d := model.DateOf(t, opts.OwnerZone).AddDays(1)
	return zone.Midnight(d, opts.OwnerZone)
}
