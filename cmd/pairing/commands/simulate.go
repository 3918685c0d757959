// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/simulate"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		seed     int64
		mixPath string
		outPath  string
		dim      int
		run      bool
		f        matchFlags
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic population",
		Long: `Generate a synthetic population. The default mix is 90 straight men,
78 straight women, 4 gay men, 7 lesbian women, 6 bi men and 15 bi women;
--mix overrides it with a YAML file of simulate.Mix fields.

Without --out or --run the population is written to stdout as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mix := simulate.DefaultMix()
			if mixPath != "" {
				data, err := os.ReadFile(mixPath)
				if err != nil {
					return fmt.Errorf("read mix: %w", err)
				}
				if err := yaml.Unmarshal(data, &mix); err != nil {
					return fmt.Errorf("parse mix %s: %w", mixPath, err)
				}
			}
			if cmd.Flags().Changed("embedding-dim") {
				mix.EmbeddingDim = dim
			}
			if err := mix.Validate(); err != nil {
				return err
			}

			pop := simulate.Generate(mix, seed)
			a.logger.Debug("population generated", zap.Int64("seed", seed), zap.Int("people", pop.Len()))

			if outPath != "" {
				if err := writePopulation(outPath, pop); err != nil {
					return err
				}
			}
			if run {
				return a.match(cmd, pop, &f)
			}
			if outPath == "" {
				return person.Encode(cmd.OutOrStdout(), pop, person.FormatYAML)
			}

			return nil
		},
	}
	fs := cmd.Flags()
	fs.Int64Var(&seed, "seed", 1, "random seed")
	fs.StringVar(&mixPath, "mix", "", "YAML file overriding the population mix")
	fs.StringVar(&outPath, "out", "", "write the population to this file (.yaml or .json)")
	fs.IntVar(&dim, "embedding-dim", 0, "attach random embeddings of this dimension")
	fs.BoolVar(&run, "run", false, "match the generated population")
	f.register(cmd)

	return cmd
}

func writePopulation(path string, pop *person.Population) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write population: %w", err)
	}
	if err := person.Encode(fh, pop, person.FormatOf(path)); err != nil {
		fh.Close()
		return err
	}

	return fh.Close()
}
