// Package main is the entry point for the archwise binary. It serves the
// wizard API and exposes the compliance resolver, prompts and diagrams on the
// command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/polisai/archwise/pkg/config"
	"github.com/polisai/archwise/pkg/logging"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// globalOptions holds the persistent root flags.
type globalOptions struct {
	ConfigPath string
	LogLevel   string
	Output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for archwise
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "archwise",
		Short: "Architecture recommendations with compliance resolution",
		Long: `archwise turns a project description into an architecture recommendation,
resolves the compliance frameworks that apply to it and renders enterprise
implementation prompts and diagrams.

Example:
  archwise resolve --industry travel GDPR "PCI DSS"
  archwise serve --config archwise.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.Output {
			case outputText, outputJSON:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (want text or json)", opts.Output)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (YAML)")
	flags.StringVarP(&opts.LogLevel, "log-level", "l", "", "Log level (debug, info, warn, error); overrides the config file")
	flags.StringVarP(&opts.Output, "output", "o", outputText, "Output format (text, json)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newResolveCmd(opts),
		newFrameworksCmd(opts),
		newIndustriesCmd(opts),
		newRecommendCmd(opts),
		newPromptsCmd(opts),
		newDiagramCmd(opts),
	)
	return rootCmd
}

// loadConfig reads the configuration file, or built-in defaults when no path
// was given, and applies the log-level flag.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	return cfg, nil
}

// logger builds a logger for one-shot commands. They log to stderr so stdout
// stays parseable.
func (o *globalOptions) logger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: true,
		Output: stderr,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
