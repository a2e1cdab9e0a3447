package statistics

import (
	"sort"
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
)

// ObservableStats summarizes one observable over an observation
type ObservableStats struct {
	Name       string        `json:"name"`
	OnDuration time.Duration `json:"onDuration"`
	OnCount    int           `json:"onCount"`
	// Share of the effective (unpaused) observation time, in percent
	Share float64 `json:"share"`
}

// CategoryStats summarizes the observables of one category
type CategoryStats struct {
	Category    string            `json:"category"`
	Continuous  bool              `json:"continuous"`
	Observables []ObservableStats `json:"observables"`
}

// Report is the statistics of a whole observation
type Report struct {
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	TotalDuration     time.Duration   `json:"totalDuration"`
	PauseDuration     time.Duration   `json:"pauseDuration"`
	EffectiveDuration time.Duration   `json:"effectiveDuration"`
	PauseCount        int             `json:"pauseCount"`
	ReadingCount      int             `json:"readingCount"`
	Categories        []CategoryStats `json:"categories"`

	// Condition and Selection are set when the statistics are restricted to
	// the time some observables are on
	Condition string         `json:"condition,omitempty"`
	Selection []model.Period `json:"selection,omitempty"`
}

// Category computes the statistics of one category between start and end.
// Observables of continuous categories are on from their reading until the
// next reading of the same category and off during pauses. Discrete
// categories only count occurrences. Comment readings are ignored.
func Category(category model.Category, readings []model.Reading, start, end time.Time) CategoryStats {
	sorted := sortedWithoutComments(readings)
	pauses := PausePeriods(sorted)
	effective := end.Sub(start) - TotalDuration(pauses)

	stats := CategoryStats{
		Category:    category.Name,
		Continuous:  category.IsContinuous(),
		Observables: make([]ObservableStats, 0, len(category.Observables)),
	}

	names := category.ObservableNames()
	for _, name := range names {
		st := ObservableStats{Name: name}
		if stats.Continuous {
			st.OnDuration, st.OnCount = continuousDuration(name, names, sorted, pauses, end)
			if effective > 0 {
				st.Share = float64(st.OnDuration) / float64(effective) * 100
			}
		} else {
			st.OnCount = discreteCount(name, sorted)
		}
		stats.Observables = append(stats.Observables, st)
	}
	return stats
}

// Observation computes the report of a whole observation. The bounds are the
// start and stop readings, or the first and last readings when missing.
func Observation(readings []model.Reading, protocol model.Protocol) Report {
	sorted := sortedWithoutComments(readings)
	report := Report{
		ReadingCount: len(readings),
		Categories:   make([]CategoryStats, 0, len(protocol.Categories)),
	}
	if len(sorted) == 0 {
		return report
	}

	report.Start, report.End = bounds(sorted)
	pauses := PausePeriods(sorted)
	report.PauseCount = len(pauses)
	report.PauseDuration = TotalDuration(pauses)
	report.TotalDuration = report.End.Sub(report.Start)
	report.EffectiveDuration = report.TotalDuration - report.PauseDuration

	for _, c := range protocol.Categories {
		report.Categories = append(report.Categories, Category(c, sorted, report.Start, report.End))
	}
	return report
}

func continuousDuration(name string, categoryNames []string, readings []model.Reading, pauses []model.Period, end time.Time) (time.Duration, int) {
	var on time.Duration
	count := 0
	var current *time.Time

	for _, r := range readings {
		if r.Type != model.ReadingData || !contains(categoryNames, r.Name) {
			continue
		}
		if current != nil {
			on += effectiveSpan(*current, r.DateTime, pauses)
			current = nil
		}
		if r.Name == name {
			at := r.DateTime
			current = &at
			count++
		}
	}

	if current != nil {
		on += effectiveSpan(*current, end, pauses)
	}
	return on, count
}

func effectiveSpan(from, to time.Time, pauses []model.Period) time.Duration {
	span := to.Sub(from)
	if span <= 0 {
		return 0
	}
	span -= PauseOverlap(from, to, pauses)
	if span < 0 {
		return 0
	}
	return span
}

func discreteCount(name string, readings []model.Reading) int {
	n := 0
	for _, r := range readings {
		if r.Type == model.ReadingData && r.Name == name {
			n++
		}
	}
	return n
}

func bounds(sorted []model.Reading) (time.Time, time.Time) {
	start, end := sorted[0].DateTime, sorted[len(sorted)-1].DateTime
	for _, r := range sorted {
		if r.Type == model.ReadingStart {
			start = r.DateTime
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Type == model.ReadingStop {
			end = sorted[i].DateTime
			break
		}
	}
	return start, end
}

func sortedWithoutComments(readings []model.Reading) []model.Reading {
	out := make([]model.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.IsComment() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
