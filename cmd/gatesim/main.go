package main

import (
	"fmt"
	"os"

	"github.com/fyerfyer/gate-sandbox/pkg/config"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gatesim",
		Short: "Interactive logic gate sandbox",
		Long: `gatesim is a canvas for wiring AND, OR, XOR and NOT gates and watching
signals travel along delayed wires.

Run 'gatesim run' to open the window or 'gatesim demo' for headless
scenarios.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (error, warning, info, debug, trace)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newRunCmd(),
		newDemoCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gatesim version %s\n", version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("rendering config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// loadConfig loads the configuration named by the global flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger builds the logger described by the configuration
func newLogger(cfg *config.Config) (*utils.Logger, error) {
	level := utils.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		logger, err := utils.NewFileLogger(level, cfg.Logging.Format, cfg.Logging.File)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		return logger, nil
	}
	return utils.NewLogger(level, cfg.Logging.Format, os.Stderr), nil
}
