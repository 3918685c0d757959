// SPDX-License-Identifier: MIT
//
// Package assignment solves the square linear assignment problem: given an
// n×n cost matrix C, find a permutation π minimizing Σ C[i][π(i)].
//
// Algorithm (Hungarian method with potentials, shortest augmenting paths):
//
//	Rows are inserted one at a time. For each new row a Dijkstra-like scan
//	over the columns, using reduced costs C[i][j] − u[i] − v[j] ≥ 0, finds the
//	cheapest augmenting path to a free column. Potentials u, v are shifted by
//	the scan's minimum slack so reduced costs stay non-negative, then the path
//	is flipped.
//
// Complexity: O(n³) time, O(n²) memory for the row copy.
//
// The solver is exact for finite costs. It never inspects the meaning of a
// cell: padding with placeholder costs is the caller's job (see optimize).
package assignment

import (
	"errors"
	"math"

	"github.com/katalvlaran/pairing/matrix"
)

// ErrNotSquare is returned when the cost matrix is not n×n.
var ErrNotSquare = errors.New("assignment: cost matrix is not square")

// Solve returns rowToCol (row i is assigned column rowToCol[i]) and the total
// cost of that assignment.
func Solve(m *matrix.Dense) ([]int, float64, error) {
	if m == nil {
		return nil, 0, matrix.ErrNilMatrix
	}
	if !m.Square() {
		return nil, 0, ErrNotSquare
	}
	n := m.Rows()

	// Stage 1: snapshot rows so the inner loop indexes plain slices.
	a := make([][]float64, n)
	for i := 0; i < n; i++ {
		row, err := m.Row(i)
		if err != nil {
			return nil, 0, err
		}
		a[i] = row
	}

	// Stage 2: potentials and matching, 1-based with column 0 as the virtual root.
	var (
		u    = make([]float64, n+1)
		v    = make([]float64, n+1)
		p    = make([]int, n+1) // p[j] = row matched to column j (0 = free)
		way  = make([]int, n+1)
		minv = make([]float64, n+1)
		used = make([]bool, n+1)
	)
	inf := math.Inf(1)
	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := 0; j <= n; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				if cur := a[i0-1][j-1] - u[i0] - v[j]; cur < minv[j] {
					minv[j], way[j] = cur, j0
				}
				if minv[j] < delta {
					delta, j1 = minv[j], j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		// Stage 3: flip the augmenting path back to the root.
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rowToCol := make([]int, n)
	var total float64
	for j := 1; j <= n; j++ {
		rowToCol[p[j]-1] = j - 1
		total += a[p[j]-1][j-1]
	}

	return rowToCol, total, nil
}
