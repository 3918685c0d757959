// SPDX-License-Identifier: MIT
//
// Package config loads the run configuration.
//
// Sources, lowest to highest priority:
//
//  1. Default() values;
//  2. an optional YAML file;
//  3. PAIRING_* environment variables.
//
// The merged result is validated with struct tags before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pairing/analysis"
	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/pipeline"
	"github.com/katalvlaran/pairing/pools"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAIRING_"

// Sentinel errors.
var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrBadEnv is returned when an environment override cannot be parsed.
	ErrBadEnv = errors.New("config: bad environment value")
)

var validate = validator.New()

// Config is the complete run configuration.
type Config struct {
	Model          string  `yaml:"model" validate:"oneof=rank_sum similarity"`
	LargeCost      float64 `yaml:"large_cost" validate:"gt=0,lte=1e12"`
	Scale          float64 `yaml:"scale" validate:"gt=0,lte=1e12"`
	TopK           int     `yaml:"top_k" validate:"gte=1"`
	BottomK        int     `yaml:"bottom_k" validate:"gte=1"`
	AgePreference  bool    `yaml:"age_preference"`
	BiPolicy       string  `yaml:"bi_policy" validate:"oneof=opposite both same"`
	Algorithm      string  `yaml:"algorithm" validate:"oneof=optimize stable hybrid"`
	Parallel       bool    `yaml:"parallel"`
	BuildLists     bool    `yaml:"build_lists"`
	ListLimit      int     `yaml:"list_limit" validate:"gte=0"`
	ExcludeHistory bool    `yaml:"exclude_history"`
	StoreDir       string  `yaml:"store_dir"`
	EmbeddingDir   string  `yaml:"embedding_dir"`
	LogLevel       string  `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:     cost.NameRankSum,
		LargeCost: cost.DefaultLargeCost,
		Scale:     cost.DefaultScale,
		TopK:      analysis.DefaultTopK,
		BottomK:   analysis.DefaultBottomK,
		BiPolicy:  string(pools.BiOpposite),
		Algorithm: string(pipeline.AlgorithmOptimize),
		Parallel:  true,
		LogLevel:  "info",
	}
}

// Load reads path (skipped when empty), applies the process environment and
// validates the result.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrBadEnv, EnvPrefix, name, v))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrBadEnv, EnvPrefix, name, v))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrBadEnv, EnvPrefix, name, v))
				return
			}
			*dst = f
		}
	}

	str("MODEL", &c.Model)
	float("LARGE_COST", &c.LargeCost)
	float("SCALE", &c.Scale)
	integer("TOP_K", &c.TopK)
	integer("BOTTOM_K", &c.BottomK)
	boolean("AGE_PREFERENCE", &c.AgePreference)
	str("BI_POLICY", &c.BiPolicy)
	str("ALGORITHM", &c.Algorithm)
	boolean("PARALLEL", &c.Parallel)
	boolean("BUILD_LISTS", &c.BuildLists)
	integer("LIST_LIMIT", &c.ListLimit)
	boolean("EXCLUDE_HISTORY", &c.ExcludeHistory)
	str("STORE_DIR", &c.StoreDir)
	str("EMBEDDING_DIR", &c.EmbeddingDir)
	str("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

// PipelineOptions translates c into pipeline options. Logger, metrics, sink
// and exclusion set are added by the caller.
func (c *Config) PipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithModelName(c.Model),
		pipeline.WithLargeCost(c.LargeCost),
		pipeline.WithScale(c.Scale),
		pipeline.WithThresholds(c.TopK, c.BottomK),
		pipeline.WithAgePreference(c.AgePreference),
		pipeline.WithBiPolicy(pools.BiPolicy(c.BiPolicy)),
		pipeline.WithAlgorithm(pipeline.Algorithm(c.Algorithm)),
		pipeline.WithParallel(c.Parallel),
		pipeline.WithListLimit(c.ListLimit),
	}
	if c.BuildLists {
		opts = append(opts, pipeline.WithBuildLists(c.ListLimit))
	}

	return opts
}

// Logger builds a production zap logger at LogLevel.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}
