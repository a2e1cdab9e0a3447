package grouping

import (
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
)

// Bucket holds the readings attributed to one category
type Bucket struct {
	Category model.Category
	Readings []model.Reading
}

// Result is the outcome of grouping. Dropped lists the data readings whose
// name matches no observable of the protocol.
type Result struct {
	Buckets []Bucket
	Dropped []model.Reading
}

// Options tunes grouping
type Options struct {
	// OnDropped is called for every data reading that matches no observable
	OnDropped func(model.Reading)
}

// Group partitions readings by category, one bucket per protocol category in
// protocol order. Data readings go to the first category with an observable of
// the same name. When the last reading is a stop, it closes every bucket.
func Group(readings []model.Reading, protocol model.Protocol) Result {
	return GroupWithOptions(readings, protocol, Options{})
}

// GroupWithOptions is Group with a drop hook
func GroupWithOptions(readings []model.Reading, protocol model.Protocol, opts Options) Result {
	result := Result{Buckets: make([]Bucket, len(protocol.Categories))}
	for i, c := range protocol.Categories {
		result.Buckets[i] = Bucket{Category: c, Readings: []model.Reading{}}
	}

	for _, r := range readings {
		if r.Type != model.ReadingData || r.IsComment() {
			continue
		}
		idx := bucketIndex(result.Buckets, r.Name)
		if idx < 0 {
			result.Dropped = append(result.Dropped, r)
			if opts.OnDropped != nil {
				opts.OnDropped(r)
			}
			continue
		}
		result.Buckets[idx].Readings = append(result.Buckets[idx].Readings, r)
	}

	if n := len(readings); n > 0 && readings[n-1].Type == model.ReadingStop {
		for i := range result.Buckets {
			result.Buckets[i].Readings = append(result.Buckets[i].Readings, readings[n-1])
		}
	}

	if len(result.Dropped) > 0 {
		util.LogWarnf("grouping: %d data reading(s) match no observable of protocol %q",
			len(result.Dropped), protocol.Name)
	}
	return result
}

func bucketIndex(buckets []Bucket, name string) int {
	for i, b := range buckets {
		if b.Category.HasObservable(name) {
			return i
		}
	}
	return -1
}

// DroppedNames returns the distinct names of dropped readings in first-seen order
func (r Result) DroppedNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range r.Dropped {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	return names
}
