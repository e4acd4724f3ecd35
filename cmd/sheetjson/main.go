// Package main provides the CLI entry point for sheetjson-go.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/config"
)

var (
	logLevel  string
	logFormat string
	envFiles  []string

	logger = logrus.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetjson",
		Short: "Convert spreadsheets with schema headers into JSON",
		Long: `sheetjson-go reads xlsx workbooks whose header row describes a nested schema
(dotted paths with optional [n] array indices) and writes one JSON object per data row.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFiles(envFiles...); err != nil {
				return err
			}
			return setupLogger(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Env files to load before reading configuration")

	rootCmd.AddCommand(newConvertCmd(), newSyncCmd(), newServeCmd())
	return rootCmd
}

func setupLogger(cmd *cobra.Command) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(parseLogLevel(logLevel))

	switch strings.ToLower(logFormat) {
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", logFormat)
	}
	return nil
}

// parseLogLevel resolves the flag value, then $LOG_LEVEL, defaulting to warn.
func parseLogLevel(flag string) logrus.Level {
	value := flag
	if value == "" {
		value = os.Getenv("LOG_LEVEL")
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}
