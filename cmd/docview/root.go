package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logFile    string
	logLevel   string

	closeLog func() error
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "docview",
		Short: "Render Markdown documents",
		Long: `docview lays out Markdown documents and renders them with the docview
renderer, on the GPU when an adapter is available and on the CPU otherwise.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setupLogging(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return g.close()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newRenderCmd(g), newConfigCmd(g), newBackendsCmd())
	return root
}

// setupLogging installs the docview logger. Without --log-file logs go to
// stderr.
func (g *globalFlags) setupLogging(stderr io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(g.logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}

	w := stderr
	if g.logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   g.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = lj
		g.closeLog = lj.Close
	}
	docview.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func (g *globalFlags) close() error {
	docview.SetLogger(nil)
	if g.closeLog == nil {
		return nil
	}
	err := g.closeLog()
	g.closeLog = nil
	return err
}

// loadConfig returns the --config file merged over the defaults.
func (g *globalFlags) loadConfig() (config.Config, error) {
	if g.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(g.configPath)
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the registered rendering backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range backendNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

