package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/util"
)

const (
	summaryWidth = 60
	labelWidth   = 22
	barWidth     = 20
)

// SummaryFormatter prints a compact plain-text overview of a report.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// Format writes the overview to w.
func (f *SummaryFormatter) Format(w io.Writer, report Report) error {
	var b strings.Builder

	title := report.Title
	if title == "" {
		title = "Observation Summary"
	}
	b.WriteString(strings.Repeat("=", summaryWidth) + "\n")
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", summaryWidth) + "\n\n")

	if report.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", report.Source)
	}

	if c := report.Corrections; c != nil {
		b.WriteString("Corrections:\n")
		if !c.NeedsCorrection() {
			b.WriteString("  none needed\n")
		}
		for _, kind := range []correction.ActionKind{
			correction.ActionSort, correction.ActionRemoveDuplicate,
			correction.ActionReorder, correction.ActionAddMissingPause,
		} {
			if n := c.Count(kind); n > 0 {
				fmt.Fprintf(&b, "  %s%d\n", util.PadRight(kind.String()+":", labelWidth), n)
			}
		}
		b.WriteString("\n")
	}

	if len(report.Readings) > 0 {
		first, last := report.Readings[0], report.Readings[len(report.Readings)-1]
		fmt.Fprintf(&b, "Readings: %d (%s → %s)\n\n", len(report.Readings),
			report.timeLabel(first.DateTime), report.timeLabel(last.DateTime))
	}

	if len(report.Timelines) > 0 {
		b.WriteString("Timelines:\n")
		for _, ct := range report.Timelines {
			line := util.Plural(len(ct.Points), "point")
			if start, end, ok := ct.Span(); ok {
				line += fmt.Sprintf(" (%s → %s)", report.timeLabel(start), report.timeLabel(end))
			}
			fmt.Fprintf(&b, "  %s%s\n", util.PadRight(util.Truncate(ct.Category, labelWidth-1), labelWidth), line)
		}
		b.WriteString("\n")
	}

	if st := report.Statistics; st != nil {
		b.WriteString("Statistics:\n")
		if st.Condition != "" {
			fmt.Fprintf(&b, "  %s%s (%s)\n", util.PadRight("When:", labelWidth), st.Condition, util.Plural(len(st.Selection), "period"))
		}
		fmt.Fprintf(&b, "  %s%s\n", util.PadRight("Observed:", labelWidth), util.FormatDuration(st.TotalDuration))
		fmt.Fprintf(&b, "  %s%s (%s)\n", util.PadRight("Paused:", labelWidth), util.FormatDuration(st.PauseDuration), util.Plural(st.PauseCount, "pause"))
		fmt.Fprintf(&b, "  %s%s\n", util.PadRight("Effective:", labelWidth), util.FormatDuration(st.EffectiveDuration))

		for _, c := range st.Categories {
			fmt.Fprintf(&b, "\n%s:\n", c.Category)
			b.WriteString(strings.Repeat("-", summaryWidth) + "\n")
			for _, o := range c.Observables {
				name := util.PadRight(util.Truncate(o.Name, labelWidth-1), labelWidth)
				if c.Continuous {
					fmt.Fprintf(&b, "  %s%s %6s  %s\n", name, util.FormatBar(o.Share, barWidth),
						util.FormatPercent(o.Share), util.FormatDuration(o.OnDuration))
				} else {
					fmt.Fprintf(&b, "  %s%s\n", name, util.Plural(o.OnCount, "occurrence"))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(report.Dropped) > 0 {
		fmt.Fprintf(&b, "Not in protocol: %s\n\n", strings.Join(report.Dropped, ", "))
	}

	b.WriteString(strings.Repeat("=", summaryWidth) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
