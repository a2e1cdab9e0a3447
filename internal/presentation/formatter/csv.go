package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/penwyp/go-actograph/internal/core/timeline"
)

// CSVFormatter writes one CSV block per report part. The first column names
// the block so the output can be filtered with standard tools.
type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)

	if c := report.Corrections; c != nil && len(c.Actions) > 0 {
		if err := cw.Write([]string{"section", "action", "readings", "reason", "description"}); err != nil {
			return err
		}
		for _, a := range c.Actions {
			if err := cw.Write([]string{"action", a.Kind.String(), actionIDs(a), a.Reason, a.Description}); err != nil {
				return err
			}
		}
	}

	if len(report.Readings) > 0 {
		if err := cw.Write([]string{"section", "id", "type", "name", "time", "unix_ms"}); err != nil {
			return err
		}
		for _, r := range report.Readings {
			record := []string{"reading", r.ID.String(), r.Type.String(), r.Name,
				report.timeLabel(r.DateTime), strconv.FormatInt(r.Millis(), 10)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	if len(report.Timelines) > 0 {
		if err := cw.Write([]string{"section", "category", "observable", "start", "end", "duration_ms"}); err != nil {
			return err
		}
		for _, ct := range report.Timelines {
			for _, s := range timeline.Segments(ct.Points) {
				end, length := "", ""
				if !s.Open {
					end = report.timeLabel(s.End)
					length = strconv.FormatInt(s.Duration().Milliseconds(), 10)
				}
				if err := cw.Write([]string{"segment", ct.Category, s.Observable, report.timeLabel(s.Start), end, length}); err != nil {
					return err
				}
			}
		}
	}

	if st := report.Statistics; st != nil && st.Condition != "" {
		if err := cw.Write([]string{"section", "condition", "start", "end", "duration_ms"}); err != nil {
			return err
		}
		for _, p := range st.Selection {
			record := []string{"selection", st.Condition, report.timeLabel(p.Start), report.timeLabel(p.End),
				strconv.FormatInt(p.Duration().Milliseconds(), 10)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	if st := report.Statistics; st != nil {
		if err := cw.Write([]string{"section", "category", "observable", "duration_ms", "count", "share"}); err != nil {
			return err
		}
		for _, c := range st.Categories {
			for _, o := range c.Observables {
				record := []string{"statistic", c.Category, o.Name,
					strconv.FormatInt(o.OnDuration.Milliseconds(), 10),
					strconv.Itoa(o.OnCount),
					fmt.Sprintf("%.2f", o.Share)}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
