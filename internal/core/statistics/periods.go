package statistics

import (
	"sort"
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
)

// PausePeriods pairs each pause start with the next pause end, in reading
// order. A second pause start before an end replaces the first one.
func PausePeriods(readings []model.Reading) []model.Period {
	var periods []model.Period
	var pauseStart *model.Reading

	for i := range readings {
		r := readings[i]
		switch r.Type {
		case model.ReadingPauseStart:
			pauseStart = &readings[i]
		case model.ReadingPauseEnd:
			if pauseStart != nil {
				periods = append(periods, model.Period{Start: pauseStart.DateTime, End: r.DateTime})
				pauseStart = nil
			}
		}
	}
	return periods
}

// PauseOverlap returns how much of [start, end) falls inside pauses
func PauseOverlap(start, end time.Time, pauses []model.Period) time.Duration {
	var overlap time.Duration
	for _, p := range pauses {
		if o, ok := Intersect(model.Period{Start: start, End: end}, p); ok {
			overlap += o.Duration()
		}
	}
	return overlap
}

// Intersect returns the common part of two periods, if not empty
func Intersect(a, b model.Period) (model.Period, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !start.Before(end) {
		return model.Period{}, false
	}
	return model.Period{Start: start, End: end}, true
}

// Union merges overlapping or adjacent periods
func Union(periods []model.Period) []model.Period {
	if len(periods) == 0 {
		return nil
	}
	sorted := make([]model.Period, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []model.Period{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// TotalDuration sums the durations of the periods
func TotalDuration(periods []model.Period) time.Duration {
	var total time.Duration
	for _, p := range periods {
		total += p.Duration()
	}
	return total
}
