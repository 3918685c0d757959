// SPDX-License-Identifier: MIT

package blossom

import "github.com/katalvlaran/pairing/core"

// MinWeightMaxCardinality returns the edges of a maximum-cardinality matching
// of g with minimum total weight, sorted by (From, To), From < To.
//
// Stage 1: index the sorted vertex set of g.
// Stage 2: transform every weight w into (max+1) − w, so that among matchings
// of equal size the heaviest transformed one is the lightest original one.
// Stage 3: solve with maxCardinality and map mates back to edges.
func MinWeightMaxCardinality(g *core.Graph) ([]core.Edge, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	ids := g.Vertices()
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	gedges := g.Edges()
	if len(gedges) == 0 {
		return nil, nil
	}
	top := g.MaxWeight() + 1
	if top >= MaxAbsWeight || top <= -MaxAbsWeight {
		return nil, ErrWeightRange
	}

	edges := make([]Edge, len(gedges))
	for k, e := range gedges {
		if e.Weight <= top-MaxAbsWeight {
			return nil, ErrWeightRange
		}
		edges[k] = Edge{I: index[e.From], J: index[e.To], W: top - e.Weight}
	}
	mate, err := MaxWeightMatching(len(ids), edges, true)
	if err != nil {
		return nil, err
	}

	// ids is sorted, so scanning i upward with j > i yields (From, To) order.
	var out []core.Edge
	for i, j := range mate {
		if j > i {
			w, err := g.Weight(ids[i], ids[j])
			if err != nil {
				return nil, err
			}
			out = append(out, core.Edge{From: ids[i], To: ids[j], Weight: w})
		}
	}

	return out, nil
}

// TotalWeight sums the weights of a matching.
func TotalWeight(es []core.Edge) int64 {
	var s int64
	for _, e := range es {
		s += e.Weight
	}

	return s
}
