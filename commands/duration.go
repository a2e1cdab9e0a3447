package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-actograph/internal/core/duration"
	"github.com/spf13/cobra"
)

var errNonCanonical = errors.New("duration parts out of range")

var (
	composeParts   duration.Parts
	composeLenient bool
)

type durationOutput struct {
	Milliseconds int64          `json:"milliseconds"`
	Compact      string         `json:"compact"`
	Parts        duration.Parts `json:"parts"`
}

func newDurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Convert between milliseconds and compact durations",
		Long: `Compact durations use the units j (days), h, m, s and ms, for example
"2j 3h 15m 30s 500ms".`,
	}

	formatCmd := &cobra.Command{
		Use:   "format <milliseconds>",
		Short: "Render milliseconds as a compact duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid milliseconds %q: %w", args[0], err)
			}
			if ms < 0 {
				return fmt.Errorf("invalid milliseconds %q: must not be negative", args[0])
			}
			return printDuration(cmd, ms, true)
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse <duration>",
		Short: "Read a compact duration as milliseconds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms := duration.ParseCompact(strings.Join(args, " "))
			return printDuration(cmd, ms, false)
		},
	}

	composeCmd := &cobra.Command{
		Use:   "compose",
		Short: "Add up days, hours, minutes, seconds and milliseconds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !composeLenient && !duration.ValidateParts(composeParts) {
				return fmt.Errorf("%w: %+v (use --lenient to carry over)", errNonCanonical, composeParts)
			}
			return printDuration(cmd, duration.PartsToMilliseconds(composeParts), false)
		},
	}
	composeCmd.Flags().Int64Var(&composeParts.Days, "days", 0, "Days")
	composeCmd.Flags().Int64Var(&composeParts.Hours, "hours", 0, "Hours (0-23)")
	composeCmd.Flags().Int64Var(&composeParts.Minutes, "minutes", 0, "Minutes (0-59)")
	composeCmd.Flags().Int64Var(&composeParts.Seconds, "seconds", 0, "Seconds (0-59)")
	composeCmd.Flags().Int64Var(&composeParts.Milliseconds, "ms", 0, "Milliseconds (0-999)")
	composeCmd.Flags().BoolVar(&composeLenient, "lenient", false,
		"Accept units beyond their range and carry them over")

	cmd.AddCommand(formatCmd, parseCmd, composeCmd)
	return cmd
}

// printDuration writes the compact form, or the millisecond count when
// compact is false; json output carries both along with the parts
func printDuration(cmd *cobra.Command, ms int64, compact bool) error {
	out := cmd.OutOrStdout()
	if cfg.Output == "json" {
		data, err := sonic.MarshalIndent(durationOutput{
			Milliseconds: ms,
			Compact:      duration.FormatCompact(ms),
			Parts:        duration.MillisecondsToParts(ms),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode duration: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if compact {
		_, err := fmt.Fprintln(out, duration.FormatCompact(ms))
		return err
	}
	_, err := fmt.Fprintln(out, ms)
	return err
}
