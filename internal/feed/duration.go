package feed

import (
	"fmt"
	"strings"
	"time"
)

// maxDuration caps parsed durations at 366 days. Values beyond the cap
// are clamped, not rejected, so a pathological feed cannot inflate an
// interval past one leap year.
const maxDuration = 366 * 24 * time.Hour

// ParseDuration parses the calendar duration form P[nD][T[nH][nM][nS]].
//
// A form with every number absent ("P", "PT") is valid and yields zero;
// the zero-length interval it produces is discarded downstream. Week
// designators are not supported and fail. The result is silently
// clamped to maxDuration.
func ParseDuration(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	if len(v) == 0 || (v[0] != 'P' && v[0] != 'p') {
		return 0, fmt.Errorf("duration %q: missing P designator", s)
	}

	datePart := v[1:]
	timePart := ""
	if i := strings.IndexAny(datePart, "Tt"); i >= 0 {
		datePart, timePart = datePart[:i], datePart[i+1:]
	}

	var total time.Duration
	var err error
	if total, err = scanDurationPart(datePart, total, []durationUnit{
		{'D', 24 * time.Hour},
	}); err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	if total, err = scanDurationPart(timePart, total, []durationUnit{
		{'H', time.Hour},
		{'M', time.Minute},
		{'S', time.Second},
	}); err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}

	return total, nil
}

type durationUnit struct {
	designator byte
	unit       time.Duration
}

// scanDurationPart consumes zero or more number+designator pairs in the
// fixed grammar order given by units, accumulating onto total with
// clamping.
func scanDurationPart(part string, total time.Duration, units []durationUnit) (time.Duration, error) {
	i := 0
	for _, u := range units {
		start := i
		for i < len(part) && part[i] >= '0' && part[i] <= '9' {
			i++
		}
		if i == start {
			continue // this component is absent
		}
		if i >= len(part) || upper(part[i]) != u.designator {
			// Digits may belong to a later unit; rewind and let the
			// next designator claim them.
			i = start
			continue
		}

		var n int64
		for _, c := range part[start:i] {
			n = n*10 + int64(c-'0')
			if n > int64(maxDuration/u.unit) {
				n = int64(maxDuration / u.unit)
				break
			}
		}
		i++ // consume designator

		total += time.Duration(n) * u.unit
		if total > maxDuration {
			total = maxDuration
		}
	}
	if i != len(part) {
		// Leftover text: unknown designator (e.g. weeks) or garbage.
		return 0, fmt.Errorf("unexpected %q", part[i:])
	}
	return total, nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
