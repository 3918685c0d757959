// SPDX-License-Identifier: MIT

// Package commands implements the pairing command tree.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/pairing/config"
)

// app carries the global flags and what PersistentPreRunE derives from them.
type app struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds a fresh command tree. Every call returns independent
// flag state.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pairing",
		Short: "Population matchmaking engine",
		Long: `pairing - build a one-to-one matching of a population.

The pipeline runs a greedy baseline, splits the population into the
heterosexual, gay and lesbian pools, solves each pool and reports stability
and satisfaction of the merged result.

Configuration is read from --config (YAML) and PAIRING_* environment
variables, in that order.

Examples:
  # Match a population file with the stable algorithm
  pairing run --people people.yaml --algorithm stable

  # Generate the reference population and match it
  pairing simulate --seed 7 --run

  # Keep history and never repeat a pair
  pairing run --people people.yaml --store ./data --exclude-history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (log level debug)")

	root.AddCommand(
		newRunCmd(a),
		newSimulateCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	switch {
	case a.verbose:
		cfg.LogLevel = "debug"
	case a.logLevel != "":
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger

	return nil
}
