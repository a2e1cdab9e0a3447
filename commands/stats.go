package commands

import (
	"github.com/penwyp/go-actograph/internal/core/statistics"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/spf13/cobra"
)

var (
	statsReadings string
	statsProtocol string
	statsFix      bool
	statsWhen     []string
	statsAny      bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-category durations and counts",
		Long: `Compute the effective (pause-free) time spent in each observable of
continuous categories, and the number of occurrences in discrete ones.

With --when the statistics are restricted to the time some observables are
on. Each --when is a group: "sitting&bark" holds while both are on,
"sitting|lying" while either is. Groups must all hold, or any of them
with --any.`,
		Example: `  go-actograph stats -r obs.json -p dog.yaml --when "sitting|lying"
  go-actograph stats -r obs.json -p dog.yaml --when sitting --when bark --any`,
		RunE: runStats,
	}

	cmd.Flags().StringVarP(&statsReadings, "readings", "r", "",
		"Readings file")
	cmd.Flags().StringVarP(&statsProtocol, "protocol", "p", "",
		"Protocol file (JSON or YAML)")
	cmd.Flags().BoolVar(&statsFix, "fix", false,
		"Apply corrections before computing statistics")
	cmd.Flags().StringArrayVar(&statsWhen, "when", nil,
		"Condition group restricting the statistics, e.g. \"sitting&bark\" (repeatable)")
	cmd.Flags().BoolVar(&statsAny, "any", false,
		"Combine --when groups with OR instead of AND")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsProtocol == "" {
		return errNoProtocol
	}

	groups := make([]statistics.ConditionGroup, 0, len(statsWhen))
	for _, expr := range statsWhen {
		group, err := statistics.ParseConditionGroup(expr)
		if err != nil {
			return err
		}
		groups = append(groups, group)
	}
	op := statistics.And
	if statsAny {
		op = statistics.Or
	}

	obs, err := openObservation(statsReadings, statsProtocol)
	if err != nil {
		return err
	}
	defer obs.Close()

	title := "Statistics: " + obs.session.Protocol().Name
	if len(groups) > 0 {
		title += " when " + statistics.DescribeConditions(groups, op)
	}
	report := newReport(title, obs.path)
	if statsFix {
		applied, err := obs.session.ApplyCorrections()
		if err != nil {
			return err
		}
		report.Corrections = &applied
	}

	var stats statistics.Report
	if len(groups) > 0 {
		stats, err = obs.session.ConditionalStatistics(groups, op)
		util.LogDebug("Conditional statistics", util.F("condition", stats.Condition), util.F("periods", len(stats.Selection)))
	} else {
		stats, err = obs.session.Statistics()
	}
	if err != nil {
		return err
	}
	report.Statistics = &stats
	return render(cmd, report)
}
