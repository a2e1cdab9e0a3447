package correction

import (
	"sort"
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
)

// entry is a reading of the working copy with its position in the input,
// or -1 when it was synthesized
type entry struct {
	reading model.Reading
	src     int
}

func (e entry) matches(a Action) bool {
	for _, pos := range a.targets {
		if e.src == pos {
			return true
		}
	}
	for _, id := range a.IDs {
		if e.reading.ID.Equal(id) {
			return true
		}
	}
	if !a.TargetID.IsZero() && e.reading.ID.Equal(a.TargetID) {
		return true
	}
	return false
}

func apply(readings []model.Reading, actions []Action) []model.Reading {
	// STEP 1: sort a working copy
	working := make([]entry, len(readings))
	for i, r := range readings {
		working[i] = entry{reading: r, src: i}
	}
	sortEntries(working)

	// STEP 2: remove flagged readings
	for _, a := range actions {
		if a.Kind != ActionRemoveDuplicate {
			continue
		}
		kept := working[:0:0]
		for _, e := range working {
			if !e.matches(a) {
				kept = append(kept, e)
			}
		}
		working = kept
	}

	// STEP 3: add synthesized readings
	for _, a := range actions {
		if a.Kind != ActionAddMissingPause || a.NewReading == nil {
			continue
		}
		r := *a.NewReading
		r.ID = model.TemporaryID(newTempID())
		working = append(working, entry{reading: r, src: -1})
	}

	// STEP 4: move the stop reading
	for _, a := range actions {
		if a.Kind != ActionReorder || !a.HasNewDateTime() {
			continue
		}
		for i := range working {
			if working[i].matches(a) {
				working[i].reading.DateTime = a.NewDateTime
				break
			}
		}
	}

	// STEP 5
	sortEntries(working)

	// STEP 6: start strictly first, stop strictly last
	enforceBoundaries(working)

	// STEP 7: final order, boundaries placed structurally
	sortEntries(working)
	return rebuild(working)
}

func enforceBoundaries(working []entry) {
	start, stop := -1, -1
	var others []int
	for i, e := range working {
		switch e.reading.Type {
		case model.ReadingStart:
			if start < 0 {
				start = i
			}
		case model.ReadingStop:
			stop = i
		default:
			others = append(others, i)
		}
	}

	var earliest, latest time.Time
	hasLatest := false
	if len(others) > 0 {
		earliest = working[others[0]].reading.DateTime
		latest = working[others[0]].reading.DateTime
		for _, i := range others[1:] {
			at := working[i].reading.DateTime
			if at.Before(earliest) {
				earliest = at
			}
			if at.After(latest) {
				latest = at
			}
		}
		hasLatest = true
	} else if start >= 0 {
		latest = working[start].reading.DateTime
		hasLatest = true
	}

	if start >= 0 {
		at := working[start].reading.DateTime
		if len(others) > 0 {
			if !at.Before(earliest) {
				working[start].reading.DateTime = earliest.Add(-time.Millisecond)
			}
		} else if at.After(model.At(0)) {
			working[start].reading.DateTime = model.At(0)
		}
	}

	if stop >= 0 {
		if hasLatest {
			if !working[stop].reading.DateTime.After(latest) {
				working[stop].reading.DateTime = latest.Add(time.Millisecond)
			}
		} else if start >= 0 {
			working[stop].reading.DateTime = working[start].reading.DateTime.Add(time.Millisecond)
		}
	}
}

func rebuild(working []entry) []model.Reading {
	out := make([]model.Reading, 0, len(working))

	for _, e := range working {
		if e.reading.Type == model.ReadingStart {
			out = append(out, e.reading)
			break
		}
	}
	for _, e := range working {
		if !e.reading.Type.IsBoundary() {
			out = append(out, e.reading)
		}
	}
	for i := len(working) - 1; i >= 0; i-- {
		if working[i].reading.Type == model.ReadingStop {
			out = append(out, working[i].reading)
			break
		}
	}
	return out
}

func sortEntries(working []entry) {
	sort.SliceStable(working, func(i, j int) bool {
		return working[i].reading.DateTime.Before(working[j].reading.DateTime)
	})
}
