package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/penwyp/go-datimer/internal/application/session"
	"github.com/penwyp/go-datimer/internal/core/constants"
	"github.com/penwyp/go-datimer/internal/core/history"
	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/presentation/display"
	"github.com/penwyp/go-datimer/internal/presentation/interaction"
	"github.com/penwyp/go-datimer/internal/presentation/layout"
	"github.com/penwyp/go-datimer/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug     bool
	logFile   string
	logFormat string

	// Display related
	timezone string

	// History related
	persistInterval time.Duration
	noWatch         bool

	// Terminal the stopwatch runs on
	stdin  = os.Stdin
	stdout = os.Stdout

	rootCmd = &cobra.Command{
		Use:   "datimer [output-file]",
		Short: "Terminal stopwatch with a pause/resume log",
		Long: `datimer shows the elapsed time in the terminal. Press 'p' or space to
pause and resume, 'q' to quit.

Every pause and resume is listed under the timer and mirrored to a history file
(default ` + constants.DefaultHistoryFile + ` in the current directory). The file is rewritten on every
event and at least every persist interval while the timer runs; it always holds
exactly the rows visible on screen.

Examples:
  datimer                              # Log to ./` + constants.DefaultHistoryFile + `
  datimer ~/work/today.log             # Log to a custom file
  datimer --persist-interval 5s        # Flush the running time more often
  datimer --timezone UTC               # Show wall-clock times in UTC`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStopwatch,
	}
)

const defaultLogFile = "~/.datimer/logs/app.log"

func init() {
	rootCmd.Flags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
	rootCmd.Flags().StringVar(&logFile, "log-file", defaultLogFile,
		"Application log file ('-' for stderr)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", string(util.FormatText),
		"Application log format (text, json)")

	rootCmd.Flags().StringVar(&timezone, "timezone", "Local",
		"Timezone for wall-clock times (e.g., UTC, Europe/London)")

	rootCmd.Flags().DurationVar(&persistInterval, "persist-interval", constants.PersistInterval,
		"Maximum time between history file rewrites while the timer runs")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"Do not recreate the history file if it is removed while running")
}

func runStopwatch(cmd *cobra.Command, args []string) error {
	format, err := util.ParseLogFormat(logFormat)
	if err != nil {
		return err
	}
	if persistInterval < constants.MinPersistInterval {
		return fmt.Errorf("persist-interval must be at least %s", constants.MinPersistInterval)
	}
	if err := util.InitializeTimeProvider(timezone); err != nil {
		return err
	}

	// Initialize logging
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logPath := logFile
	if logPath != util.StderrLogFile {
		logPath = expandPath(logPath)
	}
	if err := util.InitLogger(logLevel, logPath, format); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer util.CloseLogger()

	outputPath := resolveOutputPath(args)
	sink, err := history.CreateFileSink(outputPath)
	if err != nil {
		return fmt.Errorf("%w: create history file: %v", model.ErrTerminalInit, err)
	}
	defer sink.Close()

	keyboard, err := interaction.NewKeyboardReader(stdin)
	if err != nil {
		return err
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			util.LogErrorf("Failed to restore terminal mode: %v", err)
		}
	}()

	sizer := layout.DetectSizer(stdout)
	config := &session.Config{
		OutputPath:      outputPath,
		WatchOutput:     !noWatch,
		Origin:          constants.ViewportOrigin,
		Capacity:        sizer.Capacity(constants.ViewportOrigin),
		TickInterval:    constants.TickInterval,
		PersistInterval: persistInterval,
	}

	deps := session.Deps{
		Screen: display.NewTerminal(stdout, sizer, nil),
		Keys:   keyboard,
		Sink:   sink,
	}
	if config.WatchOutput {
		watcher, err := history.NewSinkWatcher(outputPath)
		if err != nil {
			util.LogWarnf("History file watch disabled: %v", err)
		} else {
			defer watcher.Close()
			deps.Watcher = watcher
		}
	}

	orchestrator, err := session.NewOrchestrator(config, deps)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orchestrator.Run(ctx)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// Helper functions

// resolveOutputPath returns the history file named on the command line, or
// the default hidden file in the working directory.
func resolveOutputPath(args []string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return constants.DefaultHistoryFile
	}
	return expandPath(args[0])
}

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
