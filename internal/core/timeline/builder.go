package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-actograph/internal/core/grouping"
	"github.com/penwyp/go-actograph/internal/core/model"
)

// Build converts the readings of one category into step-function points.
// Only data and stop readings are considered. A transition emits two points
// at the same instant: the previous observable closing, then the new one
// opening.
func Build(bucket []model.Reading) []Point {
	readings := make([]model.Reading, 0, len(bucket))
	for _, r := range bucket {
		if r.Type == model.ReadingData || r.Type == model.ReadingStop {
			readings = append(readings, r)
		}
	}
	if len(readings) == 0 {
		return []Point{}
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].DateTime.Before(readings[j].DateTime)
	})

	points := make([]Point, 0, 2*len(readings))
	if first := readings[0]; first.Type != model.ReadingStop {
		points = append(points, Point{Date: first.DateTime, Observable: first.Name})
	}

	for i := 1; i < len(readings); i++ {
		r, prev := readings[i], readings[i-1]
		if prev.Type != model.ReadingStop {
			points = append(points, Point{Date: r.DateTime, Observable: prev.Name})
		}
		if r.Type != model.ReadingStop {
			points = append(points, Point{Date: r.DateTime, Observable: r.Name})
		}
	}
	return points
}

// BuildAll builds the timeline of every bucket, keeping protocol order
func BuildAll(grouped grouping.Result) []CategoryTimeline {
	out := make([]CategoryTimeline, len(grouped.Buckets))
	for i, b := range grouped.Buckets {
		out[i] = CategoryTimeline{
			Category: b.Category.Name,
			Points:   Build(b.Readings),
		}
	}
	return out
}

// ActiveAt returns the observable active at instant t, i.e. the last point
// not after t. At a transition instant the new observable wins.
func ActiveAt(points []Point, t time.Time) (string, bool) {
	idx := sort.Search(len(points), func(i int) bool {
		return points[i].Date.After(t)
	})
	if idx == 0 {
		return "", false
	}
	return points[idx-1].Observable, true
}
