package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/multiplot/internal/config"
	logpkg "github.com/KaramelBytes/multiplot/internal/log"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "multiplot",
	Short: "multiplot: one HTML page of scatter charts, one per group",
	Long: `multiplot loads a CSV, TSV or XLSX table, splits it by a categorical column
and writes a single HTML page holding one scatter chart per group.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.multiplot/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json|logfmt (overrides config; default text on a terminal, logfmt otherwise)")
}

func setup(cmd *cobra.Command, _ []string) error {
	loadConfig()
	level, format := settings().LogLevel, settings().LogFormat
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	if debug {
		level = "debug"
	}
	if format == "" {
		format = defaultLogFormat(cmd.ErrOrStderr())
	}
	h, err := logpkg.CreateHandler(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return fmt.Errorf("invalid logging flags: %w", err)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// defaultLogFormat keeps colored text for people and logfmt for pipes and CI.
func defaultLogFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return logpkg.LogfmtFormat
	}
	return logpkg.TextFormat
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// settings returns the loaded configuration, or zero values that every
// consumer maps onto its own defaults.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return &cfgpkg.Global{}
	}
	return cfg
}
