package timeline

import (
	"testing"

	"github.com/penwyp/go-actograph/internal/core/grouping"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r(t model.ReadingType, name string, ms int64) model.Reading {
	return model.Reading{Type: t, Name: name, DateTime: model.At(ms)}
}

func p(ms int64, observable string) Point {
	return Point{Date: model.At(ms), Observable: observable}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		bucket   []model.Reading
		expected []Point
	}{
		{
			name:     "empty bucket",
			bucket:   nil,
			expected: []Point{},
		},
		{
			name: "transition then stop",
			bucket: []model.Reading{
				r(model.ReadingData, "A", 10),
				r(model.ReadingData, "B", 20),
				r(model.ReadingStop, "end", 30),
			},
			expected: []Point{p(10, "A"), p(20, "A"), p(20, "B"), p(30, "B")},
		},
		{
			name: "single data without stop",
			bucket: []model.Reading{
				r(model.ReadingData, "A", 10),
			},
			expected: []Point{p(10, "A")},
		},
		{
			name: "stop only",
			bucket: []model.Reading{
				r(model.ReadingStop, "end", 30),
			},
			expected: []Point{},
		},
		{
			name: "unsorted bucket is sorted first",
			bucket: []model.Reading{
				r(model.ReadingStop, "end", 30),
				r(model.ReadingData, "B", 20),
				r(model.ReadingData, "A", 10),
			},
			expected: []Point{p(10, "A"), p(20, "A"), p(20, "B"), p(30, "B")},
		},
		{
			name: "pause readings are ignored",
			bucket: []model.Reading{
				r(model.ReadingData, "A", 10),
				r(model.ReadingPauseStart, "", 12),
				r(model.ReadingPauseEnd, "", 14),
				r(model.ReadingStop, "end", 30),
			},
			expected: []Point{p(10, "A"), p(30, "A")},
		},
		{
			name: "same observable repeated",
			bucket: []model.Reading{
				r(model.ReadingData, "A", 10),
				r(model.ReadingData, "A", 15),
				r(model.ReadingStop, "end", 30),
			},
			expected: []Point{p(10, "A"), p(15, "A"), p(15, "A"), p(30, "A")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Build(tt.bucket))
		})
	}
}

func TestBuild_NoGaps(t *testing.T) {
	bucket := []model.Reading{
		r(model.ReadingData, "A", 10),
		r(model.ReadingData, "B", 20),
		r(model.ReadingData, "C", 25),
		r(model.ReadingStop, "end", 40),
	}

	points := Build(bucket)

	// every point after the first either repeats the previous observable
	// (closing) or starts at the same instant as the previous one (opening)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		assert.True(t, cur.Observable == prev.Observable || cur.Date.Equal(prev.Date),
			"gap between %v and %v", prev, cur)
	}
}

func TestBuildAll(t *testing.T) {
	grouped := grouping.Result{Buckets: []grouping.Bucket{
		{
			Category: model.Category{Name: "posture"},
			Readings: []model.Reading{r(model.ReadingData, "sitting", 0), r(model.ReadingStop, "", 10)},
		},
		{Category: model.Category{Name: "voice"}, Readings: []model.Reading{}},
	}}

	timelines := BuildAll(grouped)

	require.Len(t, timelines, 2)
	assert.Equal(t, "posture", timelines[0].Category)
	assert.Equal(t, []Point{p(0, "sitting"), p(10, "sitting")}, timelines[0].Points)
	assert.Equal(t, "voice", timelines[1].Category)
	assert.Empty(t, timelines[1].Points)

	start, end, ok := timelines[0].Span()
	assert.True(t, ok)
	assert.Equal(t, model.At(0), start)
	assert.Equal(t, model.At(10), end)

	_, _, ok = timelines[1].Span()
	assert.False(t, ok)
}

func TestCloneAll(t *testing.T) {
	original := []CategoryTimeline{
		{Category: "posture", Points: []Point{p(0, "sitting"), p(10, "sitting")}},
		{Category: "voice", Points: []Point{}},
	}

	cloned := CloneAll(original)
	require.Equal(t, original, cloned)
	cloned[0].Points[0].Observable = "standing"
	assert.Equal(t, "sitting", original[0].Points[0].Observable)
	assert.NotNil(t, cloned[1].Points, "empty point lists stay empty, not nil")
	assert.Nil(t, CloneAll(nil))
}

func TestActiveAt(t *testing.T) {
	points := []Point{p(10, "A"), p(20, "A"), p(20, "B"), p(30, "B")}

	_, ok := ActiveAt(points, model.At(5))
	assert.False(t, ok)

	name, ok := ActiveAt(points, model.At(15))
	assert.True(t, ok)
	assert.Equal(t, "A", name)

	name, _ = ActiveAt(points, model.At(20))
	assert.Equal(t, "B", name)

	name, _ = ActiveAt(points, model.At(25))
	assert.Equal(t, "B", name)
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name     string
		points   []Point
		expected []Segment
	}{
		{
			name:     "empty",
			points:   []Point{},
			expected: []Segment{},
		},
		{
			name:   "closed by stop",
			points: []Point{p(10, "A"), p(20, "A"), p(20, "B"), p(30, "B")},
			expected: []Segment{
				{Observable: "A", Start: model.At(10), End: model.At(20)},
				{Observable: "B", Start: model.At(20), End: model.At(30)},
			},
		},
		{
			name:   "repeated observable",
			points: []Point{p(0, "A"), p(5, "A"), p(5, "A")},
			expected: []Segment{
				{Observable: "A", Start: model.At(0), End: model.At(5)},
				{Observable: "A", Start: model.At(5), End: model.At(5), Open: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Segments(tt.points))
		})
	}

	built := Build([]model.Reading{
		r(model.ReadingData, "A", 0),
		r(model.ReadingData, "B", 1000),
	})
	segments := Segments(built)
	require.Len(t, segments, 2)
	assert.Equal(t, int64(1000), segments[0].Duration().Milliseconds())
	assert.True(t, segments[1].Open)
}
