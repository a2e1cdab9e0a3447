package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-actograph/internal/config"
	"github.com/penwyp/go-actograph/internal/core/duration"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/presentation/formatter"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Configuration
	configPath string
	debug      bool

	// Output related
	outputFormat string
	timezone     string
	mode         string

	// Resolved by setupEnvironment before any sub-command runs
	cfg *config.Config

	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go-actograph",
		Short: "Observation log repair and timeline tool",
		Long: `go-actograph checks, repairs and analyzes behavioral observation logs.

An observation is a list of readings (start, stop, pause_start, pause_end and
data readings) stored as a JSON array or JSONL file. A protocol (JSON or YAML)
groups observables into categories.

Examples:
  go-actograph check --readings obs.json                          # List corrective actions
  go-actograph fix --readings obs.json --write fixed.json         # Repair and save
  go-actograph timeline --readings obs.json --protocol dog.yaml   # Per-category timelines
  go-actograph stats --readings obs.json --protocol dog.yaml -o summary
  go-actograph stats -r obs.json -p dog.yaml --when "sitting&bark"   # Only while both are on
  go-actograph duration format 90000                              # 1m 30s
  go-actograph watch --readings obs.jsonl --protocol dog.yaml     # Re-render on change`,
		SilenceUsage:      true,
		PersistentPreRunE: setupEnvironment,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = util.CloseLogger()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.go-actograph/config.toml)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode (logs to stderr)")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	cmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone used to display calendar timestamps (e.g., Europe/Paris, UTC)")
	cmd.PersistentFlags().StringVar(&mode, "mode", model.ModeCalendar,
		"Observation mode (calendar, chronometer)")

	cmd.AddCommand(
		newCheckCmd(),
		newFixCmd(),
		newTimelineCmd(),
		newStatsCmd(),
		newDurationCmd(),
		newWatchCmd(),
	)
	return cmd
}

func Execute() error {
	return rootCmd.Execute()
}

// setupEnvironment loads the config file, lets explicitly set flags win over
// it, then initializes logging and the display timezone
func setupEnvironment(cmd *cobra.Command, args []string) error {
	loaded, path, found, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		loaded.Output = strings.ToLower(outputFormat)
	}
	if flags.Changed("timezone") {
		loaded.Timezone = timezone
	}
	if flags.Changed("mode") {
		loaded.Mode = strings.ToLower(mode)
	}
	if debug {
		loaded.LogLevel = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	if loaded.LogFile != "" {
		if err := ensureDir(filepath.Dir(loaded.LogFile)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:   loaded.LogLevel,
		File:    loaded.LogFile,
		Format:  util.LogFormat(loaded.LogFormat),
		Console: debug,
	}); err != nil {
		return err
	}
	if err := util.InitializeTimeProvider(loaded.Timezone); err != nil {
		return err
	}
	util.SetColorEnabled(util.IsTerminal(os.Stdout) && loaded.Output == "table")

	if found {
		util.LogDebugf("Loaded config from %s", path)
	}
	util.LogDebug("Environment ready",
		util.F("output", loaded.Output),
		util.F("mode", loaded.Mode),
		util.F("timezone", loaded.Timezone))

	cfg = loaded
	return nil
}

// newReport starts a report with the display settings of the current run
func newReport(title, source string) formatter.Report {
	report := formatter.Report{Title: title, Source: source, Mode: cfg.Mode}
	if cfg.Mode == model.ModeChronometer {
		report.T0 = duration.ChronometerT0
	}
	return report
}

func render(cmd *cobra.Command, report formatter.Report) error {
	f, err := formatter.New(cfg.Output)
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), report)
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
