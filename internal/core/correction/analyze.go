package correction

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
)

const descriptionTimeLayout = "2006-01-02 15:04:05.000"

// newTempID generates the temporary id of a synthesized reading
var newTempID = func() string {
	return "temp-" + uuid.NewString()
}

// Analyze inspects readings for structural problems and returns the actions
// that would fix them. When applyCorrections is true the corrected readings are
// returned as well. The input slice is never modified.
func Analyze(readings []model.Reading, applyCorrections bool) Result {
	order := sortedOrder(readings)

	var actions []Action

	// 1. chronological order
	if !isIdentity(order) {
		actions = append(actions, Action{
			Kind:        ActionSort,
			Description: "Sort readings in ascending chronological order",
		})
	}

	// 2. duplicate boundaries: keep the first start and the last stop
	starts := positionsOf(readings, order, model.ReadingStart)
	stops := positionsOf(readings, order, model.ReadingStop)

	if len(starts) > 1 {
		actions = append(actions, removeAction(readings, starts[1:],
			"duplicate_start",
			fmt.Sprintf("Remove %d duplicate \"start\" reading(s) (keep the first)", len(starts)-1)))
	}
	if len(stops) > 1 {
		actions = append(actions, removeAction(readings, stops[:len(stops)-1],
			"duplicate_stop",
			fmt.Sprintf("Remove %d duplicate \"stop\" reading(s) (keep the last)", len(stops)-1)))
	}

	// 3. boundary placement
	if len(starts) > 0 && len(order) > 0 && readings[order[0]].Type != model.ReadingStart {
		actions = append(actions, Action{
			Kind:        ActionReorder,
			Description: "Move the \"start\" reading to the beginning of the list",
		})
	}

	if len(stops) > 0 {
		if action, ok := stopReorder(readings, order, stops[len(stops)-1]); ok {
			actions = append(actions, action)
		}
	} else if len(order) > 0 {
		last := readings[order[len(order)-1]]
		at := last.DateTime.Add(time.Millisecond)
		actions = append(actions, Action{
			Kind: ActionAddMissingPause,
			Description: fmt.Sprintf("Add the missing \"stop\" reading after the last reading (%s)",
				at.Format(descriptionTimeLayout)),
			NewReading: &model.Reading{Name: model.NameStop, Type: model.ReadingStop, DateTime: at},
		})
	}

	// 4. pause pairing
	actions = append(actions, pauseActions(readings, order)...)

	util.LogDebugf("correction: %d action(s) proposed for %d reading(s)", len(actions), len(readings))

	result := Result{Actions: actions}
	if applyCorrections {
		result.CorrectedReadings = apply(readings, actions)
	}
	return result
}

// Apply analyzes readings and returns the corrected sequence together with
// the actions that produced it
func Apply(readings []model.Reading) Result {
	return Analyze(readings, true)
}

func stopReorder(readings []model.Reading, order []int, stopPos int) (Action, bool) {
	latest := -1
	for _, pos := range order {
		if readings[pos].Type != model.ReadingStop {
			latest = pos
		}
	}
	if latest < 0 {
		return Action{}, false
	}

	stop := readings[stopPos]
	latestAt := readings[latest].DateTime
	if stop.DateTime.After(latestAt) {
		return Action{}, false
	}

	at := latestAt.Add(time.Millisecond)
	return Action{
		Kind: ActionReorder,
		Description: fmt.Sprintf("Move the \"stop\" reading after the last reading (%s)",
			at.Format(descriptionTimeLayout)),
		TargetID:    stop.ID,
		NewDateTime: at,
		targets:     []int{stopPos},
	}, true
}

func pauseActions(readings []model.Reading, order []int) []Action {
	pauseStarts := positionsOf(readings, order, model.ReadingPauseStart)
	pauseEnds := positionsOf(readings, order, model.ReadingPauseEnd)

	usedEnds := make(map[int]bool, len(pauseEnds))
	var unpairedStarts []int

	// pauseEnds is sorted, so the first unused later end is the closest one
	for _, s := range pauseStarts {
		startAt := readings[s].DateTime
		matched := false
		for _, e := range pauseEnds {
			if usedEnds[e] || !readings[e].DateTime.After(startAt) {
				continue
			}
			usedEnds[e] = true
			matched = true
			break
		}
		if !matched {
			unpairedStarts = append(unpairedStarts, s)
		}
	}

	var actions []Action
	if len(unpairedStarts) > 0 {
		actions = append(actions, removeAction(readings, unpairedStarts,
			"unpaired_pause_start",
			fmt.Sprintf("Remove %d unpaired \"pause start\" reading(s)", len(unpairedStarts))))
	}

	for _, e := range pauseEnds {
		if usedEnds[e] {
			continue
		}
		endAt := readings[e].DateTime
		at := endAt.Add(-time.Millisecond)
		actions = append(actions, Action{
			Kind: ActionAddMissingPause,
			Description: fmt.Sprintf("Add the missing \"pause start\" reading before the \"pause end\" reading at %s",
				endAt.Format(descriptionTimeLayout)),
			NewReading: &model.Reading{Name: model.NamePauseStart, Type: model.ReadingPauseStart, DateTime: at},
		})
	}
	return actions
}

func removeAction(readings []model.Reading, positions []int, reason, description string) Action {
	ids := make([]model.ReadingID, 0, len(positions))
	for _, pos := range positions {
		if !readings[pos].ID.IsZero() {
			ids = append(ids, readings[pos].ID)
		}
	}
	return Action{
		Kind:        ActionRemoveDuplicate,
		Description: description,
		IDs:         ids,
		Reason:      reason,
		targets:     append([]int(nil), positions...),
	}
}

// sortedOrder returns the input positions ordered by timestamp; ties keep
// their input order
func sortedOrder(readings []model.Reading) []int {
	order := make([]int, len(readings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return readings[order[i]].DateTime.Before(readings[order[j]].DateTime)
	})
	return order
}

func isIdentity(order []int) bool {
	for i, pos := range order {
		if pos != i {
			return false
		}
	}
	return true
}

func positionsOf(readings []model.Reading, order []int, t model.ReadingType) []int {
	var out []int
	for _, pos := range order {
		if readings[pos].Type == t {
			out = append(out, pos)
		}
	}
	return out
}
