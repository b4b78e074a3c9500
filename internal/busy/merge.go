package busy

import (
	"sort"
	"time"

	"busyfeed/internal/model"
)

// ClipMerge clips every interval to the half-open window [start, end),
// drops what falls empty, and merges overlapping or touching intervals.
// The result is sorted ascending by start, pairwise disjoint, and
// consecutive outputs are separated by a positive gap.
//
// When a timed interval merges with an all-day interval the result is
// all-day: the coarser granularity dominates.
func ClipMerge(intervals []model.Interval, start, end time.Time) []model.Interval {
	clipped := make([]model.Interval, 0, len(intervals))
	for _, iv := range intervals {
		s, e := iv.Start, iv.End
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		if !e.After(s) {
			continue
		}
		clipped = append(clipped, model.Interval{Start: s, End: e, Kind: iv.Kind})
	}

	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	out := clipped[:0]
	for _, iv := range clipped {
		if len(out) == 0 || iv.Start.After(out[len(out)-1].End) {
			out = append(out, iv)
			continue
		}
		last := &out[len(out)-1]
		if iv.End.After(last.End) {
			last.End = iv.End
		}
		if iv.Kind == model.KindAllDay {
			last.Kind = model.KindAllDay
		}
	}
	return out
}
