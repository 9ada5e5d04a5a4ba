package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the daybrief application
var rootCmd = &cobra.Command{
	Use:   "daybrief",
	Short: "Builds a daily calendar briefing with person intel",
	Long: `daybrief fetches an executive's calendar for a day, filters it down to
the meetings that matter, and enriches every external attendee with
public news results scored for confidence.

Credentials and tuning come from the environment; a .env file in the
working directory is loaded when present.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "daybrief version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotenv)
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadDotenv merges a local .env file into the environment. A missing
// file is not an error.
func loadDotenv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err.Error())
	}
}

// newLogger builds the process logger at the requested level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
