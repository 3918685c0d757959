// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/pairing/embedstore"
	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/pipeline"
	"github.com/katalvlaran/pairing/store"
)

// errNoStore is returned when a command needs the history store and no
// directory is configured.
var errNoStore = errors.New("no store directory: set --store or store_dir")

// matchFlags are shared by every command that runs the pipeline.
type matchFlags struct {
	algorithm      string
	storeDir       string
	embeddingDir   string
	excludeHistory bool
	exportPath     string
	metricsPath    string
	pairs          bool
}

func (f *matchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.algorithm, "algorithm", "a", "", "hetero pool solver: optimize, stable or hybrid")
	fs.StringVar(&f.storeDir, "store", "", "badger directory receiving match records")
	fs.StringVar(&f.embeddingDir, "embeddings", "", "persistent embedding store directory")
	fs.BoolVar(&f.excludeHistory, "exclude-history", false, "never repeat a pair found in the store")
	fs.StringVarP(&f.exportPath, "export", "o", "", "write the final pairs as JSON to this file (- for stdout)")
	fs.StringVar(&f.metricsPath, "metrics", "", "write Prometheus metrics in text format to this file")
	fs.BoolVar(&f.pairs, "pairs", false, "print every final pair")
}

func newRunCmd(a *app) *cobra.Command {
	var (
		peoplePath string
		f          matchFlags
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match a population file",
		Long: `Match a population read from a YAML or JSON file (chosen by extension)
and print the stability and satisfaction analysis of the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pop, err := person.ReadFile(peoplePath)
			if err != nil {
				return err
			}
			return a.match(cmd, pop, &f)
		},
	}
	cmd.Flags().StringVarP(&peoplePath, "people", "p", "", "population file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("people")
	f.register(cmd)

	return cmd
}

// match runs the pipeline over pop with the configuration overridden by f
// and renders the result.
func (a *app) match(cmd *cobra.Command, pop *person.Population, f *matchFlags) (err error) {
	ctx := cmd.Context()
	cfg := *a.cfg
	if f.algorithm != "" {
		cfg.Algorithm = f.algorithm
	}
	if f.storeDir != "" {
		cfg.StoreDir = f.storeDir
	}
	if f.embeddingDir != "" {
		cfg.EmbeddingDir = f.embeddingDir
	}
	if f.excludeHistory {
		cfg.ExcludeHistory = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.ExcludeHistory && cfg.StoreDir == "" {
		return errNoStore
	}

	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg, "pairing")
	if err != nil {
		return err
	}
	opts := append(cfg.PipelineOptions(), pipeline.WithLogger(a.logger), pipeline.WithMetrics(metrics))

	if cfg.EmbeddingDir != "" {
		es, err := embedstore.New(embedstore.Options{Dir: cfg.EmbeddingDir, Logger: a.logger})
		if err != nil {
			return err
		}
		if _, err := es.Load(ctx, pop); err != nil {
			return err
		}
		if _, err := es.Attach(ctx, pop); err != nil {
			return err
		}
	}

	if cfg.StoreDir != "" {
		var db *store.Badger
		if db, err = store.OpenBadger(store.BadgerOptions{Dir: cfg.StoreDir, Logger: a.logger}); err != nil {
			return err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		opts = append(opts, pipeline.WithSink(db))
		if cfg.ExcludeHistory {
			hist, err := db.History(ctx)
			if err != nil {
				return err
			}
			opts = append(opts, pipeline.WithExclude(hist))
		}
	}

	res, runErr := pipeline.Run(ctx, pop, opts...)
	if res == nil {
		return runErr
	}
	renderResult(cmd.OutOrStdout(), res, f.pairs)

	if f.exportPath != "" {
		if err := writeExport(cmd, f.exportPath, pop, res); err != nil {
			return err
		}
	}
	if f.metricsPath != "" {
		if err := prometheus.WriteToTextfile(f.metricsPath, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return runErr
}

func writeExport(cmd *cobra.Command, path string, pop *person.Population, res *pipeline.Result) error {
	if path == "-" {
		return store.ExportJSON(cmd.OutOrStdout(), pop, res.BatchID, string(res.Algorithm), res.Matches)
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := store.ExportJSON(fh, pop, res.BatchID, string(res.Algorithm), res.Matches); err != nil {
		fh.Close()
		return err
	}

	return fh.Close()
}
