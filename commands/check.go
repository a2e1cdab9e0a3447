package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/data/parser"
	"github.com/penwyp/go-actograph/internal/data/scanner"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/spf13/cobra"
)

// ErrNeedsCorrection is returned by check --strict when a file needs repair
var ErrNeedsCorrection = errors.New("observation needs corrections")

var (
	checkReadings []string
	checkStrict   bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "List the corrective actions observation files need",
		Long: `Analyze one or more readings files and list the corrective actions each
needs: sorting, duplicate start/stop removal, boundary reordering and
missing pause insertion. Directories are searched for .json and .jsonl
files. Files are never modified.`,
		RunE: runCheck,
	}

	cmd.Flags().StringSliceVarP(&checkReadings, "readings", "r", nil,
		"Readings file(s) to check (JSON array or JSONL)")
	cmd.Flags().BoolVar(&checkStrict, "strict", false,
		"Exit with an error when any file needs corrections")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := make([]string, 0, len(checkReadings)+len(args))
	for _, p := range append(append([]string(nil), checkReadings...), args...) {
		paths = append(paths, expandPath(p))
	}
	if len(paths) == 0 {
		return errNoReadings
	}
	files, err := scanner.Expand(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no readings files found in %s", strings.Join(paths, ", "))
	}

	var results []parser.ParseResult
	for result := range parser.NewParser(cfg.Concurrency).ParseFiles(files) {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	failed := 0
	needsCorrection := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			util.LogError("Failed to read readings file", util.F("file", result.File), util.F("error", result.Error))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", result.File, result.Error)
			continue
		}

		analysis := correction.Analyze(result.Readings, false)
		if analysis.NeedsCorrection() {
			needsCorrection++
		}
		util.LogInfo("Checked observation",
			util.F("file", result.File),
			util.F("readings", len(result.Readings)),
			util.F("actions", len(analysis.Actions)))

		report := newReport("Check: "+result.File, result.File)
		report.Corrections = &analysis
		if err := render(cmd, report); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %s could not be read", failed, util.Plural(len(files), "file"))
	}
	if checkStrict && needsCorrection > 0 {
		return fmt.Errorf("%w: %d of %s", ErrNeedsCorrection, needsCorrection, util.Plural(len(files), "file"))
	}
	return nil
}
