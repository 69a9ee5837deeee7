package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - reactive validation engine",
	Long: `Callisto is a reactive validation engine for tree-shaped data models.

It tracks validation state for object graphs: debounced synchronous rules,
coalescing asynchronous rules, and nested validator composition, with an
audit journal of every handler run.

The callisto command queries and maintains the validation audit journal.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file, falling back to defaults when
// the default config file does not exist. The logging section is applied
// before the config is returned.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			cfg = config.DefaultConfig()
		} else {
			return nil, err
		}
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if _, err := logging.Setup(cfg.Logging, nil); err != nil {
		return nil, err
	}

	return cfg, nil
}
