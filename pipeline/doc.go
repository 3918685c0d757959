// SPDX-License-Identifier: MIT

// Package pipeline orchestrates one full matching run over a population
// snapshot.
//
// Stages:
//
//	0. lists      validate the population, then either build preference lists
//	              from embedding similarity or normalize the supplied ones
//	1. greedy     global cheapest-mutual-pair seeding (package greedy)
//	2. pools      re-pool everyone by orientation intent (package pools)
//	3. solve      heterosexual pool: optimize.Bipartite, or deferred
//	              acceptance, or the hybrid of both (Options.Algorithm);
//	              gay and lesbian pools: optimize.Pool.
//	              The three solves share no mutable state and run on an
//	              errgroup, concurrently when Options.Parallel is set.
//	4. merge      union of the pool results; with pools.BiBoth a person may
//	              be matched in two pools, the cheaper match wins and the
//	              loser is counted in Result.Conflicts
//	   repair     after a conflict, each pool restricted to its still-single
//	              members is solved once more and the new matches are merged
//	              in (Result.Repaired)
//	5. analysis   stability and satisfaction of the final matching
//
// Every run gets a fresh batch ID (UUID). When a Sink is configured the final
// matches are handed to it after the analysis. Metrics, when configured, are
// Prometheus collectors registered on a caller-owned registry.
//
// Example usage:
//
//	r, err := pipeline.New(
//	    pipeline.WithAlgorithm(pipeline.AlgorithmOptimize),
//	    pipeline.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	res, err := r.Run(ctx, pop)
package pipeline
