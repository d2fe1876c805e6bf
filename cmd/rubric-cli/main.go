// Command rubric-cli scores transcripts against a rubric from the terminal
// and serves the scoring HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

const (
	appName = "rubric-cli"
	Version = "0.1.0"
)

type globalOptions struct {
	configPath string
	rubricPath string
	logLevel   string
	logJSON    bool
}

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var g globalOptions
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Score transcripts against a weighted rubric",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env is normal.
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (JSON, default ./config.json)")
	cmd.PersistentFlags().StringVarP(&g.rubricPath, "rubric", "r", "", "Rubric file (.xlsx, .csv, .tsv, .yaml, .json)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "Emit JSON logs")

	cmd.AddCommand(scoreCmd(&g), rubricCmd(&g), serveCmd(&g), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(g *globalOptions) (scorer.Config, error) {
	cfg, err := scorer.LoadConfig(g.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if g.rubricPath != "" {
		cfg.RubricPath = g.rubricPath
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
