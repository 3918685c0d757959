// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/pairing/analysis"
	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/greedy"
	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/pools"
)

// Sentinel errors returned by the pipeline.
var (
	// ErrNilPopulation indicates that a nil population was passed to Run.
	ErrNilPopulation = errors.New("pipeline: population is nil")

	// ErrEmptyPopulation indicates a population without persons.
	ErrEmptyPopulation = errors.New("pipeline: population is empty")

	// ErrBadAlgorithm indicates an unknown Options.Algorithm.
	ErrBadAlgorithm = errors.New("pipeline: unknown algorithm")

	// ErrBadBiPolicy indicates an unknown Options.BiPolicy.
	ErrBadBiPolicy = errors.New("pipeline: unknown bi policy")

	// ErrBadThreshold indicates a non-positive top-K or bottom-K.
	ErrBadThreshold = errors.New("pipeline: satisfaction thresholds must be positive")

	// ErrBadScale indicates a negative Scale or LargeCost, or a Scale above
	// cost.MaxScale.
	ErrBadScale = errors.New("pipeline: cost scale out of range")

	// ErrSink wraps a failure of the configured Sink.
	ErrSink = errors.New("pipeline: sink failed")
)

// Algorithm selects the solver of the heterosexual pool.
type Algorithm string

const (
	// AlgorithmOptimize solves the pool as a minimum-cost assignment.
	AlgorithmOptimize Algorithm = "optimize"

	// AlgorithmStable runs men-proposing deferred acceptance.
	AlgorithmStable Algorithm = "stable"

	// AlgorithmHybrid keeps the pairs both proposing directions agree on and
	// solves the rest as an assignment.
	AlgorithmHybrid Algorithm = "hybrid"
)

// Valid reports whether a names a known algorithm.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmOptimize, AlgorithmStable, AlgorithmHybrid:
		return true
	}

	return false
}

// Sink receives the final matches of a run. store.Badger and store.Memory
// implement it.
type Sink interface {
	SaveMatches(ctx context.Context, batchID, algorithm string, matches []person.Match) error
}

// Options configures a Runner.
//
// Model         – cost model; nil resolves ModelName against the run's population.
// ModelName     – cost.NameRankSum (default) or cost.NameSimilarity.
// LargeCost     – "do not match" sentinel; 0 means cost.DefaultLargeCost.
// Scale         – float→int64 weight factor of the graph solver; 0 means cost.DefaultScale.
// TopK, BottomK – satisfaction thresholds.
// BuildLists    – rebuild every list from embedding similarity instead of normalizing the supplied ones.
// ListLimit     – truncate built or normalized lists (0 = unlimited).
// Exclude       – pairs that must never be matched (earlier rounds).
type Options struct {
	Model         cost.Model
	ModelName     string
	LargeCost     float64
	Scale         float64
	TopK          int
	BottomK       int
	AgePreference bool
	BiPolicy      pools.BiPolicy
	Algorithm     Algorithm
	Parallel      bool
	BuildLists    bool
	ListLimit     int
	Exclude       person.PairSet

	Logger  *zap.Logger
	Metrics *Metrics
	Sink    Sink
}

// Option represents a functional option for configuring a Runner.
type Option func(*Options)

// WithModel fixes the cost model. The model must be bound to the population
// the runner will be given.
func WithModel(m cost.Model) Option {
	return func(o *Options) {
		o.Model = m
	}
}

// WithModelName selects the cost model by name (see cost.ByName).
func WithModelName(name string) Option {
	return func(o *Options) {
		o.ModelName = name
	}
}

// WithLargeCost sets the "do not match" sentinel.
func WithLargeCost(c float64) Option {
	return func(o *Options) {
		o.LargeCost = c
	}
}

// WithScale sets the graph weight quantization factor.
func WithScale(s float64) Option {
	return func(o *Options) {
		o.Scale = s
	}
}

// WithThresholds sets the satisfaction top-K and bottom-K thresholds.
func WithThresholds(topK, bottomK int) Option {
	return func(o *Options) {
		o.TopK, o.BottomK = topK, bottomK
	}
}

// WithAgePreference enables the age-preference eligibility filter.
func WithAgePreference(on bool) Option {
	return func(o *Options) {
		o.AgePreference = on
	}
}

// WithBiPolicy selects how unmatched bisexual persons are pooled.
func WithBiPolicy(p pools.BiPolicy) Option {
	return func(o *Options) {
		o.BiPolicy = p
	}
}

// WithAlgorithm selects the heterosexual pool solver.
func WithAlgorithm(a Algorithm) Option {
	return func(o *Options) {
		o.Algorithm = a
	}
}

// WithParallel lets the three pool solves run concurrently.
func WithParallel(on bool) Option {
	return func(o *Options) {
		o.Parallel = on
	}
}

// WithBuildLists rebuilds preference lists from embeddings, truncated to limit
// entries (0 = unlimited).
func WithBuildLists(limit int) Option {
	return func(o *Options) {
		o.BuildLists = true
		o.ListLimit = limit
	}
}

// WithListLimit truncates lists without rebuilding them.
func WithListLimit(limit int) Option {
	return func(o *Options) {
		o.ListLimit = limit
	}
}

// WithExclude forbids the given pairs in every stage.
func WithExclude(s person.PairSet) Option {
	return func(o *Options) {
		o.Exclude = s
	}
}

// WithLogger sets the structured logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithSink hands the final matches of every run to s.
func WithSink(s Sink) Option {
	return func(o *Options) {
		o.Sink = s
	}
}

// DefaultOptions returns the default configuration.
//
// Defaults:
//   - ModelName: rank-sum.
//   - LargeCost: cost.DefaultLargeCost; Scale: cost.DefaultScale.
//   - TopK: analysis.DefaultTopK; BottomK: analysis.DefaultBottomK.
//   - BiPolicy: pools.BiOpposite; Algorithm: AlgorithmOptimize.
//   - Logger: zap.NewNop().
func DefaultOptions() Options {
	return Options{
		ModelName: cost.NameRankSum,
		LargeCost: cost.DefaultLargeCost,
		Scale:     cost.DefaultScale,
		TopK:      analysis.DefaultTopK,
		BottomK:   analysis.DefaultBottomK,
		BiPolicy:  pools.BiOpposite,
		Algorithm: AlgorithmOptimize,
		Logger:    zap.NewNop(),
	}
}

// Result is everything one run produced.
type Result struct {
	BatchID   string
	Algorithm Algorithm
	Model     string

	// Greedy is the Stage 1 output, kept for comparison.
	Greedy greedy.Result

	// PoolSizes counts the members of each Stage 2 pool.
	PoolSizes map[string]int

	// Per-pool Stage 3 outputs before the merge.
	Hetero  []person.Match
	Gay     []person.Match
	Lesbian []person.Match

	// Matches is the final matching: canonical pairs sorted by (A, B).
	Matches []person.Match

	// Unmatched lists, in population order, everyone without a final partner.
	Unmatched []person.ID

	// Conflicts counts pool matches dropped because a person was matched in
	// two pools (only possible with pools.BiBoth).
	Conflicts int

	// Repaired holds the matches found by re-solving the people a conflict
	// left single. They are already part of Matches.
	Repaired []person.Match

	TotalCost    float64
	Stability    analysis.StabilityReport
	Satisfaction analysis.Summary
	ByCategory   map[string]analysis.Summary

	Duration time.Duration
}
