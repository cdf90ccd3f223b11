package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
	"github.com/Tiliavir/trivial-water-tracker/internal/di"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

var (
	configPath string
	debug      bool
	ephemeral  bool

	app        *di.App
	appCleanup func()

	// clock is the time source for every command; tests pin it.
	clock timecalc.Clock = timecalc.SystemClock
)

var rootCmd = &cobra.Command{
	Use:   "twt",
	Short: "Trivial Water Tracker – a minimal CLI water intake tracker",
	Long: `twt tracks how much water you drink against a daily goal derived
from your body weight. Data is stored locally in ~/.twt/.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

// Execute is the entry point called from main.
func Execute() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.twt/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep data in memory only; nothing is saved")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

// setupApp loads the config and builds the application once per run.
func setupApp(cmd *cobra.Command, _ []string) error {
	if app != nil || cmd.Name() == "help" || (cmd.Parent() != nil && cmd.Parent().Name() == "completion") {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return storageError(err)
	}
	cfg.Debug = debug
	if ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}

	a, cleanup, err := di.InitApp(cmd.Context(), cfg, clock)
	if err != nil {
		return storageError(err)
	}
	app, appCleanup = a, cleanup
	app.Logger.Debug().Str("config", cfg.Path).Str("backend", cfg.Storage.Backend).Str("command", cmd.CommandPath()).Msg("starting")
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	app.FlushMetrics()
	appCleanup()
	app, appCleanup = nil, nil
}

// exitError carries the process exit code: 1 for usage errors, 2 for
// storage and config errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error   { return &exitError{code: 1, err: err} }
func storageError(err error) error { return &exitError{code: 2, err: err} }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
