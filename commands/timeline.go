package commands

import (
	"github.com/penwyp/go-actograph/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var (
	timelineReadings string
	timelineProtocol string
	timelineFix      bool
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Build one step timeline per protocol category",
		Long: `Group the data readings of an observation by protocol category and print
each category as a sequence of segments. Readings whose name is in no
category are listed separately. Comments (names starting with '#') are
skipped.`,
		RunE: runTimeline,
	}

	cmd.Flags().StringVarP(&timelineReadings, "readings", "r", "",
		"Readings file")
	cmd.Flags().StringVarP(&timelineProtocol, "protocol", "p", "",
		"Protocol file (JSON or YAML)")
	cmd.Flags().BoolVar(&timelineFix, "fix", false,
		"Apply corrections before building timelines")
	return cmd
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if timelineProtocol == "" {
		return errNoProtocol
	}
	obs, err := openObservation(timelineReadings, timelineProtocol)
	if err != nil {
		return err
	}
	defer obs.Close()

	report, err := timelineReport(obs, timelineFix)
	if err != nil {
		return err
	}
	return render(cmd, report)
}

// timelineReport builds the timelines of an observation, repairing it first
// when fix is set
func timelineReport(obs *observation, fix bool) (formatter.Report, error) {
	report := newReport("Timelines: "+obs.session.Protocol().Name, obs.path)

	if fix {
		applied, err := obs.session.ApplyCorrections()
		if err != nil {
			return report, err
		}
		report.Corrections = &applied
	}

	timelines, err := obs.session.Timelines()
	if err != nil {
		return report, err
	}
	report.Timelines = timelines

	if report.Dropped, err = obs.droppedNames(); err != nil {
		return report, err
	}
	return report, nil
}
