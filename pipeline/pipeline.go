// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/pairing/analysis"
	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/greedy"
	"github.com/katalvlaran/pairing/optimize"
	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/pools"
	"github.com/katalvlaran/pairing/preference"
	"github.com/katalvlaran/pairing/stable"
)

// Stage names, used by metrics and logs.
const (
	StageLists    = "lists"
	StageGreedy   = "greedy"
	StagePools    = "pools"
	StageSolve    = "solve"
	StageRepair   = "repair"
	StageAnalysis = "analysis"
	StageSink     = "sink"
)

// Runner executes pipeline runs. A Runner holds configuration only; every
// run owns its own state, so one Runner may serve sequential runs over
// different populations.
type Runner struct {
	opts    Options
	batchID func() string
}

// New validates opts and returns a Runner.
func New(opts ...Option) (*Runner, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.Algorithm.Valid() {
		return nil, fmt.Errorf("%q: %w", o.Algorithm, ErrBadAlgorithm)
	}
	if !o.BiPolicy.Valid() {
		return nil, fmt.Errorf("%q: %w", o.BiPolicy, ErrBadBiPolicy)
	}
	if o.TopK <= 0 || o.BottomK <= 0 {
		return nil, ErrBadThreshold
	}
	if o.Scale < 0 || o.Scale > cost.MaxScale || o.LargeCost < 0 {
		return nil, fmt.Errorf("scale %g, large cost %g: %w", o.Scale, o.LargeCost, ErrBadScale)
	}
	if o.Model == nil {
		if _, err := cost.ByName(o.ModelName, nil); err != nil {
			return nil, err
		}
	}

	return &Runner{opts: o, batchID: uuid.NewString}, nil
}

// Run is a convenience for New followed by Runner.Run.
func Run(ctx context.Context, pop *person.Population, opts ...Option) (*Result, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return r.Run(ctx, pop)
}

// Run executes every stage over pop. Preference lists of pop are rewritten by
// the lists stage; nothing else in pop is modified.
//
// When the sink fails the complete Result is still returned together with an
// error wrapping ErrSink.
func (r *Runner) Run(ctx context.Context, pop *person.Population) (*Result, error) {
	start := time.Now()
	res, err := r.run(ctx, pop)
	r.opts.Metrics.observeRun(r.opts.Algorithm, err)
	if res != nil {
		res.Duration = time.Since(start)
	}
	log := r.opts.Logger
	if err != nil {
		log.Error("pipeline run failed", zap.Error(err))
		return res, err
	}
	log.Info("pipeline run complete",
		zap.String("batch_id", res.BatchID),
		zap.String("algorithm", string(res.Algorithm)),
		zap.Int("matches", len(res.Matches)),
		zap.Int("unmatched", len(res.Unmatched)),
		zap.Int("blocking_pairs", res.Stability.BlockingPairs),
		zap.Float64("total_cost", res.TotalCost),
		zap.Duration("duration", res.Duration),
	)

	return res, nil
}

func (r *Runner) run(ctx context.Context, pop *person.Population) (*Result, error) {
	if pop == nil {
		return nil, ErrNilPopulation
	}
	if pop.Len() == 0 {
		return nil, ErrEmptyPopulation
	}
	if err := person.Validate(pop); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	o := r.opts
	model := o.Model
	if model == nil {
		var err error
		if model, err = cost.ByName(o.ModelName, pop); err != nil {
			return nil, err
		}
	}
	elig := eligibility.Options{AgePreference: o.AgePreference, Exclude: o.Exclude}
	res := &Result{BatchID: r.batchID(), Algorithm: o.Algorithm, Model: model.Name()}
	log := o.Logger.With(zap.String("batch_id", res.BatchID))
	log.Debug("pipeline run started",
		zap.Int("population", pop.Len()),
		zap.String("model", res.Model),
		zap.String("bi_policy", string(o.BiPolicy)),
	)

	// Stage 0: preference lists.
	err := r.stage(ctx, log, StageLists, func() error {
		popts := preference.Options{Eligibility: elig, Limit: o.ListLimit}
		var err error
		if o.BuildLists {
			_, err = preference.Build(pop, cost.Similarity{}, popts)
		} else {
			_, err = preference.Normalize(pop, popts)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 1: greedy seeding.
	err = r.stage(ctx, log, StageGreedy, func() error {
		var err error
		res.Greedy, err = greedy.Match(pop, model, greedy.Options{LargeCost: o.LargeCost, Eligibility: elig})
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: pools.
	var ps pools.Pools
	err = r.stage(ctx, log, StagePools, func() error {
		var err error
		ps, err = pools.Decompose(res.Greedy.Matches, res.Greedy.Unmatched, pop, o.BiPolicy)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.PoolSizes = ps.Sizes()

	// Stage 3: per-pool solves.
	err = r.stage(ctx, log, StageSolve, func() error {
		return r.solve(ctx, pop, model, elig, ps, res)
	})
	if err != nil {
		return nil, err
	}
	res.Matches, res.Conflicts = merge(res.Hetero, res.Gay, res.Lesbian)
	if res.Conflicts > 0 {
		log.Warn("bi persons matched in two pools", zap.Int("conflicts", res.Conflicts))

		// Stage 3b: partners of dropped matches get one more solve.
		err = r.stage(ctx, log, StageRepair, func() error {
			return r.repair(ctx, log, pop, model, elig, ps, res)
		})
		if err != nil {
			return nil, err
		}
	}
	res.TotalCost = person.TotalCost(res.Matches)
	res.Unmatched = unmatched(pop, res.Matches)

	// Stage 4: analysis.
	err = r.stage(ctx, log, StageAnalysis, func() error {
		var err error
		if res.Stability, err = analysis.Stability(pop, res.Matches); err != nil {
			return err
		}
		if res.Satisfaction, err = analysis.Satisfaction(pop, res.Matches, o.TopK, o.BottomK); err != nil {
			return err
		}
		res.ByCategory, err = analysis.SatisfactionByCategory(pop, res.Matches, o.TopK, o.BottomK)
		return err
	})
	if err != nil {
		return nil, err
	}
	o.Metrics.observeResult(res)

	if o.Sink != nil {
		err = r.stage(ctx, log, StageSink, func() error {
			return o.Sink.SaveMatches(ctx, res.BatchID, string(res.Algorithm), res.Matches)
		})
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrSink, err)
		}
	}

	return res, nil
}

// stage runs fn after a cancellation check and records its duration.
func (r *Runner) stage(ctx context.Context, log *zap.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	r.opts.Metrics.observeStage(name, d)
	if err != nil {
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}
	log.Debug("stage done", zap.String("stage", name), zap.Duration("duration", d))

	return nil
}

// solve runs the three pool solvers on an errgroup. Each goroutine writes
// only its own Result field.
func (r *Runner) solve(ctx context.Context, pop *person.Population, model cost.Model, elig eligibility.Options, ps pools.Pools, res *Result) error {
	o := r.opts
	oopts := optimize.Options{LargeCost: o.LargeCost, Scale: o.Scale, Eligibility: elig}

	g, gctx := errgroup.WithContext(ctx)
	if !o.Parallel {
		g.SetLimit(1)
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		res.Hetero, err = r.solveHetero(pop, model, elig, oopts, ps)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		res.Gay, err = optimize.Pool(ps.GayMen, model, oopts)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		res.Lesbian, err = optimize.Pool(ps.LesbianWomen, model, oopts)
		return err
	})

	return g.Wait()
}

func (r *Runner) solveHetero(pop *person.Population, model cost.Model, elig eligibility.Options, oopts optimize.Options, ps pools.Pools) ([]person.Match, error) {
	sopts := stable.Options{Eligibility: elig, Model: model, Optimize: oopts}
	switch r.opts.Algorithm {
	case AlgorithmStable:
		da, err := stable.DeferredAcceptance(ps.StraightMen, ps.StraightWomen, pop, sopts)
		return da.Matches, err
	case AlgorithmHybrid:
		h, err := stable.Hybrid(ps.StraightMen, ps.StraightWomen, pop, model, sopts)
		return h.Matches, err
	default:
		return optimize.Bipartite(ps.StraightMen, ps.StraightWomen, model, oopts)
	}
}

// repair re-solves, once, every pool restricted to the people the merge left
// single, then folds the new matches into res. Matches lost again to a
// conflict add to res.Conflicts.
func (r *Runner) repair(ctx context.Context, log *zap.Logger, pop *person.Population, model cost.Model, elig eligibility.Options, ps pools.Pools, res *Result) error {
	partner := person.Partners(res.Matches)
	free := func(in []*person.Person) []*person.Person {
		var out []*person.Person
		for _, p := range in {
			if _, ok := partner[p.ID]; !ok {
				out = append(out, p)
			}
		}
		return out
	}
	left := pools.Pools{
		StraightMen:   free(ps.StraightMen),
		StraightWomen: free(ps.StraightWomen),
		GayMen:        free(ps.GayMen),
		LesbianWomen:  free(ps.LesbianWomen),
	}

	var again Result
	if err := r.solve(ctx, pop, model, elig, left, &again); err != nil {
		return err
	}
	extra, conflicts := merge(again.Hetero, again.Gay, again.Lesbian)
	res.Repaired = extra
	res.Conflicts += conflicts
	res.Matches = append(res.Matches, extra...)
	person.SortMatches(res.Matches)
	log.Debug("repair done",
		zap.Int("single", len(left.StraightMen)+len(left.StraightWomen)+len(left.GayMen)+len(left.LesbianWomen)),
		zap.Int("repaired", len(extra)),
	)

	return nil
}

// merge unions the pool results. Matches are taken cheapest first; a match
// touching someone already matched is dropped and counted as a conflict.
func merge(parts ...[]person.Match) ([]person.Match, int) {
	var all []person.Match
	for _, p := range parts {
		all = append(all, p...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Cost != all[j].Cost {
			return all[i].Cost < all[j].Cost
		}
		if all[i].A != all[j].A {
			return all[i].A < all[j].A
		}
		return all[i].B < all[j].B
	})

	used := make(map[person.ID]struct{}, 2*len(all))
	out := make([]person.Match, 0, len(all))
	var conflicts int
	for _, m := range all {
		_, a := used[m.A]
		_, b := used[m.B]
		if a || b {
			conflicts++
			continue
		}
		used[m.A], used[m.B] = struct{}{}, struct{}{}
		out = append(out, m)
	}
	person.SortMatches(out)

	return out, conflicts
}

func unmatched(pop *person.Population, matches []person.Match) []person.ID {
	partner := person.Partners(matches)
	var out []person.ID
	for _, id := range pop.IDs() {
		if _, ok := partner[id]; !ok {
			out = append(out, id)
		}
	}

	return out
}
