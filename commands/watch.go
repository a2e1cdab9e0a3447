package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/penwyp/go-actograph/internal/core/session"
	"github.com/penwyp/go-actograph/internal/presentation/formatter"
	"github.com/penwyp/go-actograph/internal/util"
	"github.com/spf13/cobra"
)

var (
	watchReadings string
	watchProtocol string
	watchFix      bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render corrections and timelines whenever the files change",
		Long: `Watch a readings file, and optionally its protocol, and print a fresh
report each time either is written. Stop with Ctrl+C.`,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchReadings, "readings", "r", "",
		"Readings file to watch")
	cmd.Flags().StringVarP(&watchProtocol, "protocol", "p", "",
		"Protocol file; timelines and statistics are shown when set")
	cmd.Flags().BoolVar(&watchFix, "fix", false,
		"Apply corrections in memory before building timelines")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := openObservation(watchReadings, watchProtocol)
	if err != nil {
		return err
	}
	defer func() { obs.Close() }()

	paths := []string{obs.path}
	protocolPath := ""
	if watchProtocol != "" {
		protocolPath = expandPath(watchProtocol)
		paths = append(paths, protocolPath)
	}

	watcher, err := session.NewFileWatcher(paths)
	if err != nil {
		return fmt.Errorf("failed to watch %v: %w", paths, err)
	}
	defer watcher.Close()

	util.LogInfo("Watching observation", util.F("readings", obs.path), util.F("protocol", protocolPath))
	if err := renderWatch(cmd, obs); err != nil {
		return err
	}

	return watchLoop(ctx, cmd, watcher, protocolPath, &obs)
}

func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *session.FileWatcher, protocolPath string, obs **observation) error {
	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Watch stopped")
			return nil

		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			util.LogDebug("File changed", util.F("file", event.Path), util.F("op", event.Operation))

			changed, err := handleWatchEvent(event.Path, protocolPath, obs)
			if err != nil {
				// a half-written file fails to parse; the next write fixes it
				util.LogWarn("Reload failed", util.F("file", event.Path), util.F("error", err))
				fmt.Fprintf(cmd.ErrOrStderr(), "reload %s: %v\n", event.Path, err)
				continue
			}
			if !changed {
				continue
			}
			if err := renderWatch(cmd, *obs); err != nil {
				return err
			}
		}
	}
}

// handleWatchEvent reloads what the event touched. A protocol change opens a
// new session since a session's protocol is fixed.
func handleWatchEvent(path, protocolPath string, obs **observation) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	if protocolPath != "" && abs == protocolPath {
		reopened, err := openObservation((*obs).path, protocolPath)
		if err != nil {
			return false, err
		}
		(*obs).Close()
		*obs = reopened
		return true, nil
	}
	return (*obs).reload()
}

func renderWatch(cmd *cobra.Command, obs *observation) error {
	out := cmd.OutOrStdout()
	if cfg.Output == "table" || cfg.Output == "summary" {
		fmt.Fprintln(out, util.FormatSectionSeparator())
		fmt.Fprintf(out, "Updated %s\n", util.GetTimeProvider().FormatReading(time.Now()))
	}

	report, err := watchReport(obs)
	if err != nil {
		return err
	}
	return render(cmd, report)
}

func watchReport(obs *observation) (formatter.Report, error) {
	if len(obs.session.Protocol().Categories) == 0 {
		report := newReport("Watch: "+obs.path, obs.path)
		analysis, err := obs.session.Analyze()
		if err != nil {
			return report, err
		}
		report.Corrections = &analysis
		return report, nil
	}

	report, err := timelineReport(obs, watchFix)
	if err != nil {
		return report, err
	}
	report.Title = "Watch: " + obs.path
	if report.Corrections == nil {
		analysis, err := obs.session.Analyze()
		if err != nil {
			return report, err
		}
		report.Corrections = &analysis
	}

	stats, err := obs.session.Statistics()
	if err != nil {
		return report, err
	}
	report.Statistics = &stats
	return report, nil
}
