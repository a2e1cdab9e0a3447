package statistics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
)

var (
	ErrEmptyCondition    = errors.New("empty condition")
	ErrMixedOperators    = errors.New("condition mixes '&' and '|'")
	ErrUnknownObservable = errors.New("observable not in protocol")
)

// Operator combines the periods of several conditions
type Operator int

const (
	And Operator = iota
	Or
)

func (o Operator) String() string {
	if o == Or {
		return "or"
	}
	return "and"
}

func (o Operator) symbol() string {
	if o == Or {
		return "|"
	}
	return "&"
}

// ConditionGroup selects the time during which its observables are on:
// all of them with And, any of them with Or
type ConditionGroup struct {
	Observables []string
	Operator    Operator
}

func (g ConditionGroup) String() string {
	return strings.Join(g.Observables, g.Operator.symbol())
}

// ParseConditionGroup reads "a&b&c" or "a|b|c". A single name is a group of
// one observable.
func ParseConditionGroup(expr string) (ConditionGroup, error) {
	hasAnd, hasOr := strings.Contains(expr, "&"), strings.Contains(expr, "|")
	if hasAnd && hasOr {
		return ConditionGroup{}, fmt.Errorf("%w: %q", ErrMixedOperators, expr)
	}

	group := ConditionGroup{Operator: And}
	if hasOr {
		group.Operator = Or
	}
	for _, part := range strings.Split(expr, group.Operator.symbol()) {
		name := strings.TrimSpace(part)
		if name == "" {
			return ConditionGroup{}, fmt.Errorf("%w: %q", ErrEmptyCondition, expr)
		}
		group.Observables = append(group.Observables, name)
	}
	return group, nil
}

// DescribeConditions renders groups joined by op, e.g. "(a|b) and c"
func DescribeConditions(groups []ConditionGroup, op Operator) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.String()
		if len(groups) > 1 && len(g.Observables) > 1 {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, " "+op.String()+" ")
}

// ObservablePeriods returns the periods during which name is on: from each
// of its readings until the next data reading among categoryNames, or until
// the stop reading. An empty categoryNames lets any data reading end the
// period. A period still open without a stop reading is omitted.
func ObservablePeriods(readings []model.Reading, name string, categoryNames []string) []model.Period {
	sorted := sortedWithoutComments(readings)
	var periods []model.Period
	var current *time.Time

	for _, r := range sorted {
		if r.Type != model.ReadingData || (len(categoryNames) > 0 && !contains(categoryNames, r.Name)) {
			continue
		}
		if current != nil {
			periods = append(periods, model.Period{Start: *current, End: r.DateTime})
			current = nil
		}
		if r.Name == name {
			at := r.DateTime
			current = &at
		}
	}

	if current != nil {
		for _, r := range sorted {
			if r.Type == model.ReadingStop {
				periods = append(periods, model.Period{Start: *current, End: r.DateTime})
				break
			}
		}
	}
	return periods
}

// IntersectAll returns the time covered by every list of periods
func IntersectAll(lists [][]model.Period) []model.Period {
	if len(lists) == 0 {
		return nil
	}
	result := Union(lists[0])
	for _, list := range lists[1:] {
		result = clip(result, Union(list))
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// UnionAll returns the time covered by any list of periods
func UnionAll(lists [][]model.Period) []model.Period {
	var all []model.Period
	for _, list := range lists {
		all = append(all, list...)
	}
	return Union(all)
}

// Conditional computes the statistics of every category restricted to the
// time selected by groups, which are combined with op. Without groups the
// selection is the whole observation. Shares are relative to the effective
// selected time.
func Conditional(readings []model.Reading, protocol model.Protocol, groups []ConditionGroup, op Operator) (Report, error) {
	sorted := sortedWithoutComments(readings)
	selection, err := selectPeriods(sorted, protocol, groups, op)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ReadingCount: len(readings),
		Categories:   make([]CategoryStats, 0, len(protocol.Categories)),
		Condition:    DescribeConditions(groups, op),
		Selection:    selection,
	}
	if len(selection) > 0 {
		report.Start, report.End = selection[0].Start, selection[len(selection)-1].End
	}

	pauses := PausePeriods(sorted)
	report.TotalDuration = TotalDuration(selection)
	for _, p := range pauses {
		if overlap := TotalDuration(clip([]model.Period{p}, selection)); overlap > 0 {
			report.PauseCount++
			report.PauseDuration += overlap
		}
	}
	report.EffectiveDuration = report.TotalDuration - report.PauseDuration

	for _, c := range protocol.Categories {
		report.Categories = append(report.Categories, restrictedCategory(c, sorted, selection, pauses, report.EffectiveDuration))
	}
	return report, nil
}

func selectPeriods(sorted []model.Reading, protocol model.Protocol, groups []ConditionGroup, op Operator) ([]model.Period, error) {
	if len(groups) == 0 {
		if len(sorted) == 0 {
			return nil, nil
		}
		start, end := bounds(sorted)
		if !end.After(start) {
			return nil, nil
		}
		return []model.Period{{Start: start, End: end}}, nil
	}

	groupPeriods := make([][]model.Period, 0, len(groups))
	for _, g := range groups {
		if len(g.Observables) == 0 {
			return nil, ErrEmptyCondition
		}
		lists := make([][]model.Period, 0, len(g.Observables))
		for _, name := range g.Observables {
			category, ok := protocol.CategoryOf(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownObservable, name)
			}
			lists = append(lists, ObservablePeriods(sorted, name, category.ObservableNames()))
		}
		groupPeriods = append(groupPeriods, combine(lists, g.Operator))
	}
	return combine(groupPeriods, op), nil
}

func combine(lists [][]model.Period, op Operator) []model.Period {
	combined := IntersectAll(lists)
	if op == Or {
		combined = UnionAll(lists)
	}
	var out []model.Period
	for _, p := range combined {
		if p.Duration() > 0 {
			out = append(out, p)
		}
	}
	return out
}

func restrictedCategory(category model.Category, sorted []model.Reading, selection, pauses []model.Period, effective time.Duration) CategoryStats {
	stats := CategoryStats{
		Category:    category.Name,
		Continuous:  category.IsContinuous(),
		Observables: make([]ObservableStats, 0, len(category.Observables)),
	}

	names := category.ObservableNames()
	for _, name := range names {
		st := ObservableStats{Name: name}
		if stats.Continuous {
			on := clip(ObservablePeriods(sorted, name, names), selection)
			for _, p := range on {
				st.OnDuration += effectiveSpan(p.Start, p.End, pauses)
			}
			st.OnCount = len(on)
			if effective > 0 {
				st.Share = float64(st.OnDuration) / float64(effective) * 100
			}
		} else {
			for _, r := range sorted {
				if r.Type == model.ReadingData && r.Name == name && covers(selection, r.DateTime) {
					st.OnCount++
				}
			}
		}
		stats.Observables = append(stats.Observables, st)
	}
	return stats
}

// clip cuts each period to the parts inside selection
func clip(periods, selection []model.Period) []model.Period {
	var out []model.Period
	for _, p := range periods {
		for _, s := range selection {
			if common, ok := Intersect(p, s); ok {
				out = append(out, common)
			}
		}
	}
	return out
}

func covers(selection []model.Period, at time.Time) bool {
	for _, s := range selection {
		if !at.Before(s.Start) && !at.After(s.End) {
			return true
		}
	}
	return false
}
