// SPDX-License-Identifier: MIT
package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/pipeline"
	"github.com/katalvlaran/pairing/pools"
	"github.com/katalvlaran/pairing/simulate"
)

func mk(id string, g person.Gender, o person.Orientation, prefs ...person.ID) *person.Person {
	return &person.Person{ID: person.ID(id), Gender: g, Orientation: o, Age: 30, AcceptsBi: true, Preferences: prefs}
}

// mixed has two hetero couples, an odd gay pool and a lesbian couple.
func mixed() *person.Population {
	return person.MustPopulation(
		mk("m1", person.Male, person.Straight, "w1", "w2"),
		mk("m2", person.Male, person.Straight, "w2", "w1"),
		mk("w1", person.Female, person.Straight, "m1", "m2"),
		mk("w2", person.Female, person.Straight, "m2", "m1"),
		mk("g1", person.Male, person.Gay, "g2", "g3"),
		mk("g2", person.Male, person.Gay, "g1", "g3"),
		mk("g3", person.Male, person.Gay, "g1", "g2"),
		mk("l1", person.Female, person.Lesbian, "l2"),
		mk("l2", person.Female, person.Lesbian, "l1"),
	)
}

type recordingSink struct {
	mu      sync.Mutex
	batches map[string][]person.Match
	algo    string
	err     error
}

func (s *recordingSink) SaveMatches(_ context.Context, batchID, algorithm string, matches []person.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.batches == nil {
		s.batches = map[string][]person.Match{}
	}
	s.batches[batchID] = matches
	s.algo = algorithm

	return nil
}

func TestRun_MixedPopulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg, "pairing")
	require.NoError(t, err)
	sink := &recordingSink{}

	res, err := pipeline.Run(context.Background(), mixed(),
		pipeline.WithMetrics(metrics),
		pipeline.WithSink(sink),
		pipeline.WithParallel(true),
	)
	require.NoError(t, err)

	assert.Equal(t, []person.Match{
		{A: "g1", B: "g2", Cost: 2},
		{A: "l1", B: "l2", Cost: 2},
		{A: "m1", B: "w1", Cost: 2},
		{A: "m2", B: "w2", Cost: 2},
	}, res.Matches)
	assert.Equal(t, []person.ID{"g3"}, res.Unmatched)
	assert.Equal(t, 8.0, res.TotalCost)
	assert.Zero(t, res.Conflicts)
	assert.True(t, res.Stability.Stable())
	assert.Equal(t, 8, res.Satisfaction.N)
	assert.Equal(t, 1.0, res.Satisfaction.Mean)
	assert.Len(t, res.Greedy.Matches, 4)
	assert.Equal(t, 3, res.PoolSizes[person.CategoryGayMen])
	assert.Equal(t, "rank_sum", res.Model)
	assert.NotEmpty(t, res.BatchID)

	assert.Equal(t, res.Matches, sink.batches[res.BatchID])
	assert.Equal(t, "optimize", sink.algo)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Unmatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("optimize", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Matches.WithLabelValues(pools.NameHetero)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Matches.WithLabelValues(pools.NameGay)))
}

func TestRun_AllAlgorithmsOnSimulatedPopulation(t *testing.T) {
	for _, algo := range []pipeline.Algorithm{pipeline.AlgorithmOptimize, pipeline.AlgorithmStable, pipeline.AlgorithmHybrid} {
		for _, policy := range []pools.BiPolicy{pools.BiOpposite, pools.BiSame, pools.BiBoth} {
			t.Run(string(algo)+"/"+string(policy), func(t *testing.T) {
				pop := simulate.Generate(simulate.DefaultMix(), 7)
				res, err := pipeline.Run(context.Background(), pop,
					pipeline.WithAlgorithm(algo),
					pipeline.WithBiPolicy(policy),
				)
				require.NoError(t, err)
				require.NotEmpty(t, res.Matches)

				seen := map[person.ID]bool{}
				for _, m := range res.Matches {
					require.False(t, seen[m.A], "%s matched twice", m.A)
					require.False(t, seen[m.B], "%s matched twice", m.B)
					seen[m.A], seen[m.B] = true, true
					assert.True(t, eligibility.MutualPair(pop.Get(m.A), pop.Get(m.B), eligibility.DefaultOptions()))
				}
				assert.Equal(t, pop.Len(), 2*len(res.Matches)+len(res.Unmatched))
				if policy != pools.BiBoth {
					assert.Zero(t, res.Conflicts)
				}
			})
		}
	}
}

func TestRun_ExcludedPairNeverMatched(t *testing.T) {
	history := person.PairSet{}
	history.Add("m1", "w1")

	pop := mixed()
	res, err := pipeline.Run(context.Background(), pop, pipeline.WithExclude(history))
	require.NoError(t, err)
	assert.Equal(t, []person.Match{{A: "m1", B: "w2", Cost: 3}, {A: "m2", B: "w1", Cost: 3}}, res.Hetero)
	assert.NotContains(t, pop.Get("m1").Preferences, person.ID("w1"))
}

func TestRun_NonMutualNeverMatched(t *testing.T) {
	pop := person.MustPopulation(
		mk("a", person.Male, person.Straight),
		mk("b", person.Female, person.Straight, "a"),
	)
	res, err := pipeline.Run(context.Background(), pop)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, []person.ID{"a", "b"}, res.Unmatched)
}

func TestRun_BuildListsFromEmbeddings(t *testing.T) {
	pop := person.MustPopulation(
		mk("m1", person.Male, person.Straight),
		mk("m2", person.Male, person.Straight),
		mk("w1", person.Female, person.Straight),
		mk("w2", person.Female, person.Straight),
	)
	pop.Get("m1").Embedding = []float32{1, 0}
	pop.Get("w1").Embedding = []float32{1, 0.1}
	pop.Get("m2").Embedding = []float32{0, 1}
	pop.Get("w2").Embedding = []float32{0.1, 1}

	res, err := pipeline.Run(context.Background(), pop, pipeline.WithBuildLists(0))
	require.NoError(t, err)
	assert.Equal(t, []person.ID{"w1", "w2"}, pop.Get("m1").Preferences)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, person.ID("w1"), res.Matches[0].B)
	assert.Equal(t, person.ID("w2"), res.Matches[1].B)
}

// A bi man wins in the hetero pool; his gay-pool partner g1 is matched again
// from the leftovers instead of staying single.
func TestRun_BiBothRepairsDroppedPartner(t *testing.T) {
	pop := person.MustPopulation(
		mk("m1", person.Male, person.Straight, "w1", "w2"),
		mk("w1", person.Female, person.Straight, "m1", "b1"),
		mk("w2", person.Female, person.Straight, "m1"),
		mk("b1", person.Male, person.Bi, "w1", "g1"),
		mk("g1", person.Male, person.Gay, "g2", "b1", "g4"),
		mk("g2", person.Male, person.Gay, "g1", "g3"),
		mk("g3", person.Male, person.Gay, "g2"),
		mk("g4", person.Male, person.Gay, "g3", "g1"),
	)

	res, err := pipeline.Run(context.Background(), pop,
		pipeline.WithBiPolicy(pools.BiBoth),
		pipeline.WithParallel(false),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Conflicts)
	assert.Equal(t, []person.Match{{A: "g1", B: "g4", Cost: 5}}, res.Repaired)
	assert.Equal(t, []person.Match{
		{A: "b1", B: "w1", Cost: 3},
		{A: "g1", B: "g4", Cost: 5},
		{A: "g2", B: "g3", Cost: 3},
		{A: "m1", B: "w2", Cost: 3},
	}, res.Matches)
	assert.Empty(t, res.Unmatched)
	assert.Equal(t, 14.0, res.TotalCost)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := pipeline.Run(ctx, nil)
	assert.ErrorIs(t, err, pipeline.ErrNilPopulation)

	_, err = pipeline.Run(ctx, person.MustPopulation())
	assert.ErrorIs(t, err, pipeline.ErrEmptyPopulation)

	_, err = pipeline.New(pipeline.WithAlgorithm("annealing"))
	assert.ErrorIs(t, err, pipeline.ErrBadAlgorithm)

	_, err = pipeline.New(pipeline.WithBiPolicy("all"))
	assert.ErrorIs(t, err, pipeline.ErrBadBiPolicy)

	_, err = pipeline.New(pipeline.WithThresholds(0, 30))
	assert.ErrorIs(t, err, pipeline.ErrBadThreshold)

	_, err = pipeline.New(pipeline.WithScale(1e19))
	assert.ErrorIs(t, err, pipeline.ErrBadScale)

	_, err = pipeline.New(pipeline.WithLargeCost(-1))
	assert.ErrorIs(t, err, pipeline.ErrBadScale)

	bad := person.MustPopulation(&person.Person{ID: "x", Gender: "X", Orientation: person.Straight})
	_, err = pipeline.Run(ctx, bad)
	assert.ErrorIs(t, err, person.ErrInvalidPopulation)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = pipeline.Run(cancelled, mixed())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SinkFailureKeepsResult(t *testing.T) {
	boom := errors.New("disk full")
	core, logs := observer.New(zap.InfoLevel)

	res, err := pipeline.Run(context.Background(), mixed(),
		pipeline.WithSink(&recordingSink{err: boom}),
		pipeline.WithLogger(zap.New(core)),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrSink)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.Len(t, res.Matches, 4)
	assert.Equal(t, 1, logs.FilterMessage("pipeline run failed").Len())
}

func TestRunner_ReusableAcrossRuns(t *testing.T) {
	r, err := pipeline.New(pipeline.WithAlgorithm(pipeline.AlgorithmStable))
	require.NoError(t, err)

	first, err := r.Run(context.Background(), mixed())
	require.NoError(t, err)
	second, err := r.Run(context.Background(), mixed())
	require.NoError(t, err)

	assert.Equal(t, first.Matches, second.Matches)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}
