package feed

import (
	"errors"
	"strings"
	"time"

	appLog "busyfeed/internal/log"
	"busyfeed/internal/model"
)

// Options controls how a feed is resolved into absolute intervals.
type Options struct {
	// OwnerZone is the validated owner timezone. All-day values and the
	// reporting window are anchored to it. May be nil, in which case
	// all-day values cannot be resolved and are dropped.
	OwnerZone *time.Location

	// DefaultTZFallback interprets floating date-times (no Z, no TZID)
	// in OwnerZone instead of UTC.
	DefaultTZFallback bool

	// Warn receives short pre-sanitized diagnostics for non-fatal
	// anomalies. Raw feed content is never included. May be nil.
	Warn func(string)
}

const maxWarnLen = 160

func (o Options) warnf(msg string) {
	if len(msg) > maxWarnLen {
		msg = msg[:maxWarnLen]
	}
	appLog.Warn("feed: " + msg)
	if o.Warn != nil {
		o.Warn(msg)
	}
}

// anomaly classifies everything that can go wrong while resolving a
// feed, and anomalyPolicy is the single decision table that fixes the
// blast radius of each case. A malformed single period or event loses
// only that item; an explicitly named but unknown timezone fails the
// whole feed, because honoring it wrongly would silently shift every
// derived interval.
type anomaly int

const (
	anomalyMalformedPeriod anomaly = iota
	anomalyMalformedEvent
	anomalyExplicitZone
)

type anomalyAction int

const (
	actionDropItem anomalyAction = iota
	actionFailFeed
)

var anomalyPolicy = map[anomaly]anomalyAction{
	anomalyMalformedPeriod: actionDropItem,
	anomalyMalformedEvent:  actionDropItem,
	anomalyExplicitZone:    actionFailFeed,
}

// classify maps a resolution error onto the decision table.
func classify(err error) anomaly {
	if errors.Is(err, ErrInvalidTimeZone) {
		return anomalyExplicitZone
	}
	return anomalyMalformedEvent
}

// Parse resolves a decoded free/busy feed into absolute busy intervals.
// The caller enforces the byte budget before invocation.
//
// Malformed individual periods and events are dropped silently (the
// output just shrinks); an unresolvable explicit TZID returns
// ErrInvalidTimeZone and no intervals.
func Parse(body []byte, opts Options) ([]model.Interval, error) {
	lines := UnfoldLines(string(body))

	var (
		out []model.Interval

		inFreeBusy bool
		event      *eventBlock
		nested     int // depth of sub-blocks (e.g. VALARM) inside the current VEVENT
	)

	for _, line := range lines {
		name, params, value, ok := splitContentLine(line)
		if !ok {
			continue
		}

		switch {
		case name == "BEGIN":
			switch {
			case strings.EqualFold(value, "VFREEBUSY"):
				inFreeBusy = true
			case strings.EqualFold(value, "VEVENT"):
				event = &eventBlock{}
				nested = 0
			case event != nil:
				nested++
			}

		case name == "END":
			switch {
			case strings.EqualFold(value, "VFREEBUSY"):
				inFreeBusy = false
			case strings.EqualFold(value, "VEVENT"):
				if event == nil {
					break
				}
				iv, err := event.resolve(opts)
				if err != nil {
					if anomalyPolicy[classify(err)] == actionFailFeed {
						return nil, err
					}
					opts.warnf("event dropped: unresolvable fields")
				} else if iv != nil {
					out = append(out, *iv)
				}
				event = nil
			case event != nil && nested > 0:
				nested--
			}

		case inFreeBusy && name == "FREEBUSY":
			ivs, err := resolveFreeBusyLine(params, value, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, ivs...)

		case event != nil && nested == 0:
			// A VALARM's DURATION must not become the event's.
			event.take(name, params, value)
		}
	}

	appLog.Debug("feed: parse completed", "interval_count", len(out))
	return out, nil
}

// splitContentLine breaks "NAME;PARAM=V;PARAM=V:VALUE" apart. The name
// is upper-cased; parameter names are upper-cased, values kept as-is.
func splitContentLine(line string) (name string, params map[string]string, value string, ok bool) {
	head, value, found := strings.Cut(line, ":")
	if !found {
		return "", nil, "", false
	}

	parts := strings.Split(head, ";")
	name = strings.ToUpper(strings.TrimSpace(parts[0]))
	if name == "" {
		return "", nil, "", false
	}

	for _, p := range parts[1:] {
		k, v, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[strings.ToUpper(strings.TrimSpace(k))] = strings.Trim(v, `"`)
	}
	return name, params, value, true
}

// resolveFreeBusyLine expands one FREEBUSY property into intervals. The
// property's TZID parameter scopes only the periods on this line. A
// period that fails to parse is dropped individually.
func resolveFreeBusyLine(params map[string]string, value string, opts Options) ([]model.Interval, error) {
	tzid := params["TZID"]

	var out []model.Interval
	for _, period := range strings.Split(value, ",") {
		period = strings.TrimSpace(period)
		if period == "" {
			continue
		}

		iv, err := resolvePeriod(period, tzid, opts)
		if err != nil {
			if anomalyPolicy[classifyPeriod(err)] == actionFailFeed {
				return nil, err
			}
			opts.warnf("freebusy period dropped")
			continue
		}
		if iv != nil {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func classifyPeriod(err error) anomaly {
	if errors.Is(err, ErrInvalidTimeZone) {
		return anomalyExplicitZone
	}
	return anomalyMalformedPeriod
}

// resolvePeriod parses "start/end" or "start/duration" and resolves it.
// A nil interval with nil error means the period resolved to nothing
// (zero or negative length) and is discarded.
func resolvePeriod(period, tzid string, opts Options) (*model.Interval, error) {
	startRaw, endRaw, found := strings.Cut(period, "/")
	if !found {
		return nil, errFieldUnresolved
	}

	start, err := resolveValue(rawValue{value: startRaw, tzid: tzid}, opts)
	if err != nil {
		return nil, err
	}

	var end time.Time
	if len(endRaw) > 0 && (endRaw[0] == 'P' || endRaw[0] == 'p') {
		dur, err := ParseDuration(endRaw)
		if err != nil {
			return nil, err
		}
		end = start.at.Add(dur)
	} else {
		endRes, err := resolveValue(rawValue{value: endRaw, tzid: tzid}, opts)
		if err != nil {
			return nil, err
		}
		end = endRes.at
	}

	return makeInterval(start, end), nil
}

// makeInterval enforces the strict end-after-start invariant.
func makeInterval(start resolved, end time.Time) *model.Interval {
	if !end.After(start.at) {
		return nil
	}
	kind := model.KindTimed
	if start.allDay {
		kind = model.KindAllDay
	}
	return &model.Interval{Start: start.at, End: end, Kind: kind}
}
