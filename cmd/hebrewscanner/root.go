package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// parseLogLevel converts a string log level to slog.Level. Supports
// debug, info, warn, error (case-insensitive).
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

// getLogLevel resolves the configured log level, checking the
// --log-level flag, then HEBREWSCANNER_LOG_LEVEL, then info.
func getLogLevel() slog.Level {
	level := logLevel
	if level == "" {
		level = os.Getenv("HEBREWSCANNER_LOG_LEVEL")
	}
	parsed, err := parseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using info\n", err)
		return slog.LevelInfo
	}
	return parsed
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: getLogLevel()}))
}

var rootCmd = &cobra.Command{
	Use:   "hebrewscanner",
	Short: "Post-OCR reconstruction for scanned Hebrew documents",
	Long: `hebrewscanner turns word-level OCR output for Hebrew document pages into
clean, structured text.

The pipeline:
  - filters and repairs OCR words using a masked Hebrew language model
  - recovers page geometry: margin columns, headers, footers, paragraphs,
    section headings, centered lines
  - removes repeating watermark paragraphs across a multi-page export
  - emits plain text, a word-level selection model, or a DOCX package`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./hebrewscanner.yaml or $HOME/.hebrewscanner)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: info, env: HEBREWSCANNER_LOG_LEVEL)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(selectCmd)
}
