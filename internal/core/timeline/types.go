package timeline

import (
	"time"
)

// Point is a control point of a step function: from Date until the next
// point, Observable is the active state of the category
type Point struct {
	Date       time.Time `json:"date"`
	Observable string    `json:"observable"`
}

// CategoryTimeline is the step function of one protocol category
type CategoryTimeline struct {
	Category string  `json:"category"`
	Points   []Point `json:"points"`
}

// Span returns the first and last instants of the timeline
func (ct CategoryTimeline) Span() (time.Time, time.Time, bool) {
	if len(ct.Points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return ct.Points[0].Date, ct.Points[len(ct.Points)-1].Date, true
}

// CloneAll returns a deep copy of timelines
func CloneAll(timelines []CategoryTimeline) []CategoryTimeline {
	if timelines == nil {
		return nil
	}
	out := make([]CategoryTimeline, len(timelines))
	for i, ct := range timelines {
		out[i] = CategoryTimeline{Category: ct.Category}
		if ct.Points != nil {
			out[i].Points = make([]Point, len(ct.Points))
			copy(out[i].Points, ct.Points)
		}
	}
	return out
}

// Segment is one interval during which an observable is active. An open
// segment has no closing point yet and End equals Start.
type Segment struct {
	Observable string
	Start      time.Time
	End        time.Time
	Open       bool
}

func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Segments pairs opening and closing points back into intervals
func Segments(points []Point) []Segment {
	segments := make([]Segment, 0, (len(points)+1)/2)
	for i := 0; i < len(points); {
		p := points[i]
		if i+1 < len(points) && points[i+1].Observable == p.Observable {
			segments = append(segments, Segment{Observable: p.Observable, Start: p.Date, End: points[i+1].Date})
			i += 2
			continue
		}
		segments = append(segments, Segment{Observable: p.Observable, Start: p.Date, End: p.Date, Open: true})
		i++
	}
	return segments
}
