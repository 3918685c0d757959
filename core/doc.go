// SPDX-License-Identifier: MIT

// Package core provides the in-memory compatibility graph the pool optimizer
// hands to the blossom solver.
//
// A Graph G = (V, E) here is always:
//
//   - undirected (every edge is mirrored in the adjacency map),
//   - weighted with int64 weights (costs are quantized before insertion),
//   - simple: no self-loops, no parallel edges.
//
// Deterministic iteration: Vertices() returns IDs sorted ascending, Edges()
// returns edges sorted by (From, To) with From < To, NeighborIDs() is sorted.
// Solvers built on top therefore produce identical output for identical input.
//
// Concurrency: a sync.RWMutex guards vertices, edges and adjacency, so a
// Graph may be read from several goroutines while pools are solved in
// parallel.
//
// Errors:
//
//	ErrEmptyVertexID       - vertex ID is the empty string.
//	ErrVertexNotFound      - requested vertex does not exist.
//	ErrEdgeNotFound        - requested edge does not exist.
//	ErrLoopNotAllowed      - edge from a vertex to itself.
//	ErrMultiEdgeNotAllowed - second edge between the same endpoints.
package core
