// SPDX-License-Identifier: MIT

// Package blossom implements Edmonds' weighted matching for general
// (non-bipartite) graphs.
//
// What:
//
//   - MaxWeightMatching(n, edges, maxCardinality) finds a maximum-weight
//     matching over vertex indices [0, n), optionally restricted to the
//     maximum-cardinality matchings.
//   - MinWeightMaxCardinality(g) runs it on a *core.Graph after the transform
//     w' = (max w + 1) − w, yielding the maximum-cardinality matching of
//     minimum total weight. On an even-sized complete-enough graph this is a
//     minimum-weight perfect matching.
//   - TotalWeight(es) sums a returned matching; exported for callers that
//     compare solutions, the pairing pipeline itself reports float costs.
//
// How:
//
//	The primal-dual method grows alternating trees from every single vertex,
//	shrinks odd cycles into blossoms, augments along tight augmenting paths
//	and adjusts vertex and blossom duals when no tight edge remains. Each of
//	at most n stages costs O(n²), giving O(n³) overall.
//
// Weights are int64. Vertex duals are stored doubled, so every dual step
// stays integral and the result is exact; callers with float costs quantize
// first (see cost.Quantize).
package blossom
