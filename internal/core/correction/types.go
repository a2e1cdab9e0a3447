package correction

import (
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
)

// ActionKind is the kind of corrective action proposed by the analysis
type ActionKind int

const (
	ActionSort ActionKind = iota
	ActionRemoveDuplicate
	ActionReorder
	// ActionAddMissingPause inserts a synthesized reading. It is also used for
	// a missing stop reading, not only for pause boundaries.
	ActionAddMissingPause
)

func (k ActionKind) String() string {
	switch k {
	case ActionSort:
		return "sort"
	case ActionRemoveDuplicate:
		return "remove_duplicate"
	case ActionReorder:
		return "reorder"
	case ActionAddMissingPause:
		return "add_missing_pause"
	default:
		return "unknown"
	}
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action describes one change the correction pass would make.
// Only the fields relevant to Kind are set.
type Action struct {
	Kind        ActionKind
	Description string

	// RemoveDuplicate
	IDs    []model.ReadingID
	Reason string

	// Reorder. NewDateTime is zero for the informational "start is not first" action.
	TargetID    model.ReadingID
	NewDateTime time.Time

	// AddMissingPause
	NewReading *model.Reading

	// positions in the input slice, used to match readings without identity
	targets []int
}

// HasNewDateTime reports whether a reorder action moves a reading
func (a Action) HasNewDateTime() bool {
	return !a.NewDateTime.IsZero()
}

// Result is the outcome of an analysis. CorrectedReadings is only populated
// when corrections were requested.
type Result struct {
	Actions           []Action
	CorrectedReadings []model.Reading
}

// Clone returns a deep copy of the result
func (r Result) Clone() Result {
	out := Result{CorrectedReadings: model.CloneReadings(r.CorrectedReadings)}
	if r.Actions != nil {
		out.Actions = make([]Action, len(r.Actions))
		for i, a := range r.Actions {
			if a.IDs != nil {
				a.IDs = append([]model.ReadingID(nil), a.IDs...)
			}
			if a.NewReading != nil {
				reading := *a.NewReading
				a.NewReading = &reading
			}
			if a.targets != nil {
				a.targets = append([]int(nil), a.targets...)
			}
			out.Actions[i] = a
		}
	}
	return out
}

// NeedsCorrection reports whether the analysis found anything to fix
func (r Result) NeedsCorrection() bool {
	return len(r.Actions) > 0
}

// Count returns the number of actions of the given kind
func (r Result) Count(kind ActionKind) int {
	n := 0
	for _, a := range r.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
