package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/duration"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/statistics"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/penwyp/go-actograph/internal/util"
)

// Report is everything a command may render. Nil or empty parts are skipped.
type Report struct {
	Title  string
	Source string

	// Mode selects how instants are shown: wall-clock for calendar
	// observations, elapsed time since T0 for chronometer ones
	Mode string
	T0   time.Time

	Corrections *correction.Result
	Readings    []model.Reading
	Timelines   []timeline.CategoryTimeline
	Statistics  *statistics.Report
	Dropped     []string
}

// Formatter renders a report
type Formatter interface {
	Format(w io.Writer, report Report) error
}

// New returns the formatter registered under name
func New(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	case "summary":
		return NewSummaryFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (table, json, csv, summary)", name)
	}
}

func (r Report) timeLabel(t time.Time) string {
	if r.Mode == model.ModeChronometer {
		return duration.FormatFromDate(t, r.T0)
	}
	return util.GetTimeProvider().FormatReading(t)
}

func actionIDs(a correction.Action) string {
	switch {
	case len(a.IDs) > 0:
		ids := make([]string, len(a.IDs))
		for i, id := range a.IDs {
			ids[i] = id.String()
		}
		return strings.Join(ids, " ")
	case !a.TargetID.IsZero():
		return a.TargetID.String()
	case a.NewReading != nil:
		return a.NewReading.ID.String()
	default:
		return "-"
	}
}

func readingName(r model.Reading) string {
	if r.Name != "" {
		return r.Name
	}
	return "-"
}

func segmentEnd(r Report, s timeline.Segment) string {
	if s.Open {
		return "…"
	}
	return r.timeLabel(s.End)
}
