package commands

import (
	"fmt"

	"github.com/penwyp/go-actograph/internal/data/parser"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/spf13/cobra"
)

var (
	fixReadings string
	fixWrite    string
	fixInPlace  bool
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair an observation and print or save the corrected readings",
		Long: `Apply every corrective action to a readings file. The corrected readings
are printed, and written to --write (JSON array, or JSONL when the path ends
in .jsonl) when given.`,
		RunE: runFix,
	}

	cmd.Flags().StringVarP(&fixReadings, "readings", "r", "",
		"Readings file to repair")
	cmd.Flags().StringVarP(&fixWrite, "write", "w", "",
		"Write the corrected readings to this file")
	cmd.Flags().BoolVar(&fixInPlace, "in-place", false,
		"Overwrite the readings file with the corrected readings")
	cmd.MarkFlagsMutuallyExclusive("write", "in-place")
	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	obs, err := openObservation(fixReadings, "")
	if err != nil {
		return err
	}
	defer obs.Close()

	applied, err := obs.session.ApplyCorrections()
	if err != nil {
		return err
	}
	readings, err := obs.session.Readings()
	if err != nil {
		return err
	}

	target := fixWrite
	if fixInPlace {
		target = obs.path
	}
	if target != "" {
		target = expandPath(target)
		if err := parser.WriteReadingsFile(target, readings); err != nil {
			return fmt.Errorf("failed to save corrected readings: %w", err)
		}
		util.LogInfo("Corrected readings written",
			util.F("file", target),
			util.F("actions", len(applied.Actions)))
	}

	report := newReport("Fix: "+obs.path, obs.path)
	report.Corrections = &applied
	report.Readings = readings
	return render(cmd, report)
}
