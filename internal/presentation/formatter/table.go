package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/penwyp/go-actograph/internal/util"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// TableFormatter renders each part of a report as a rounded table
type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(w io.Writer, report Report) error {
	if report.Title != "" {
		if _, err := fmt.Fprintln(w, util.FormatHeaderTitle(report.Title)); err != nil {
			return err
		}
	}

	if c := report.Corrections; c != nil {
		if len(c.Actions) == 0 {
			fmt.Fprintln(w, util.FormatDataTitle("No corrections needed"))
		} else {
			fmt.Fprintln(w, util.FormatDiagnosticTitle(util.Plural(len(c.Actions), "correction")))
			rows := make([][]string, len(c.Actions))
			for i, a := range c.Actions {
				rows[i] = []string{strconv.Itoa(i + 1), a.Kind.String(), actionIDs(a), a.Description}
			}
			fmt.Fprintln(w, renderTable([]string{"#", "Action", "Readings", "Description"}, rows,
				[]columnAlignment{alignRight}))
		}
	}

	if len(report.Readings) > 0 {
		fmt.Fprintln(w, util.FormatDataTitle("Readings"))
		rows := make([][]string, len(report.Readings))
		for i, r := range report.Readings {
			rows[i] = []string{strconv.Itoa(i + 1), r.ID.String(), r.Type.String(), readingName(r), report.timeLabel(r.DateTime)}
		}
		fmt.Fprintln(w, renderTable([]string{"#", "ID", "Type", "Name", "Time"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
	}

	for _, ct := range report.Timelines {
		fmt.Fprintln(w, util.FormatDataTitle("Timeline: "+ct.Category))
		segments := timeline.Segments(ct.Points)
		if len(segments) == 0 {
			fmt.Fprintln(w, "  (no readings)")
			continue
		}
		rows := make([][]string, len(segments))
		for i, s := range segments {
			length := "-"
			if !s.Open {
				length = util.FormatDuration(s.Duration())
			}
			rows[i] = []string{s.Observable, report.timeLabel(s.Start), segmentEnd(report, s), length}
		}
		fmt.Fprintln(w, renderTable([]string{"Observable", "From", "To", "Length"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
	}

	if st := report.Statistics; st != nil {
		fmt.Fprintln(w, util.FormatDataTitle("Statistics"))
		fmt.Fprintf(w, "Observed %s, paused %s (%s), effective %s\n",
			util.FormatDuration(st.TotalDuration), util.FormatDuration(st.PauseDuration),
			util.Plural(st.PauseCount, "pause"), util.FormatDuration(st.EffectiveDuration))
		if st.Condition != "" {
			fmt.Fprintf(w, "When %s: %s\n", st.Condition, util.Plural(len(st.Selection), "period"))
		}

		var rows [][]string
		for _, c := range st.Categories {
			for _, o := range c.Observables {
				on, share := "-", "-"
				if c.Continuous {
					on = util.FormatDuration(o.OnDuration)
					share = util.FormatPercent(o.Share)
				}
				rows = append(rows, []string{c.Category, o.Name, on, strconv.Itoa(o.OnCount), share})
			}
		}
		if len(rows) > 0 {
			fmt.Fprintln(w, renderTable([]string{"Category", "Observable", "Duration", "Count", "Share"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}))
		}
	}

	if len(report.Dropped) > 0 {
		fmt.Fprintln(w, util.FormatDiagnosticTitle("Not in protocol"))
		for _, name := range report.Dropped {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
