// SPDX-License-Identifier: MIT

// Package matrix provides the dense cost matrix consumed by the assignment
// solver.
//
// Dense is a row-major r×c matrix of float64 values stored in one flat slice
// for cache friendliness. All indexers validate bounds and return sentinel
// errors instead of panicking; Set rejects NaN and ±Inf so that a solver
// never sees a non-finite cost.
//
// Typical use:
//
//	m, _ := matrix.NewFilled(n, n, cost.DefaultLargeCost)
//	_ = m.Set(i, j, c)
//	rowToCol, total, err := assignment.Solve(m)
package matrix
