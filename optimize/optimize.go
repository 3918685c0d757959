// SPDX-License-Identifier: MIT
//
// Package optimize implements Stage 3 of the pipeline: exact re-solving of
// each orientation pool produced by pools.Decompose.
//
//	Bipartite - two disjoint pools (straight men × straight women). The
//	            smaller side is padded with placeholders to an n×n matrix
//	            filled with LargeCost, real mutual pairs get their model
//	            cost, and assignment.Solve finds the minimum-cost perfect
//	            assignment. Placeholder or LargeCost cells are dropped.
//
//	Pool      - one same-gender pool. A core.Graph with an edge per mutual
//	            pair (quantized cost) is solved by blossom.MinWeightMaxCardinality.
//	            Odd pools get one dummy vertex joined to everyone at a weight
//	            above every real edge; dummy edges are dropped.
//
// A pair is usable only when it is mutual: eligible from both sides and
// listed by both. Both optimizers re-check this before accepting a pair, and both
// return an empty result (never an error) for empty input. Individuals left
// without a pair are acceptable.
package optimize

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pairing/assignment"
	"github.com/katalvlaran/pairing/blossom"
	"github.com/katalvlaran/pairing/core"
	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/matrix"
	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNilModel is returned when no cost model is supplied.
	ErrNilModel = errors.New("optimize: nil cost model")

	// ErrWeightOverflow is returned by Pool when a quantized edge weight, or
	// the odd-pool dummy weight, does not fit the graph solver's int64 range.
	// It matches cost.ErrWeightOverflow under errors.Is.
	ErrWeightOverflow = cost.ErrWeightOverflow
)

// dummyID is the base name of the odd-pool placeholder vertex.
const dummyID = "~dummy"

// Options configures both optimizers.
type Options struct {
	// LargeCost marks forbidden cells. Zero means cost.DefaultLargeCost.
	LargeCost float64

	// Scale is the float→int64 quantization factor for graph weights.
	// Zero means cost.DefaultScale.
	Scale float64

	// Eligibility is forwarded to the mutuality check.
	Eligibility eligibility.Options
}

func (o Options) large() float64 {
	if o.LargeCost > 0 {
		return o.LargeCost
	}

	return cost.DefaultLargeCost
}

// Bipartite solves the assignment between left and right.
//
// Stage 1: n = max(|left|, |right|); fill an n×n matrix with LargeCost.
// Stage 2: set every mutual real pair to min(model cost, LargeCost).
// Stage 3: solve; keep real cells strictly below LargeCost that still pass
// the mutuality check.
//
// Complexity: O(|L|·|R|·c + n³).
func Bipartite(left, right []*person.Person, model cost.Model, opts Options) ([]person.Match, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	large := opts.large()

	m, err := matrix.NewFilled(n, n, large)
	if err != nil {
		return nil, err
	}
	for i, a := range left {
		for j, b := range right {
			if !eligibility.MutualPair(a, b, opts.Eligibility) {
				continue
			}
			c := model.Cost(a, b)
			if cost.IsBlocked(c, large) {
				continue
			}
			if err := m.Set(i, j, c); err != nil {
				return nil, err
			}
		}
	}

	rowToCol, _, err := assignment.Solve(m)
	if err != nil {
		return nil, err
	}

	var out []person.Match
	for i, j := range rowToCol {
		if i >= len(left) || j >= len(right) {
			continue // placeholder
		}
		c, _ := m.At(i, j)
		if cost.IsBlocked(c, large) {
			continue
		}
		a, b := left[i], right[j]
		if !eligibility.MutualPair(a, b, opts.Eligibility) {
			continue
		}
		out = append(out, newMatch(a.ID, b.ID, c))
	}
	person.SortMatches(out)

	return out, nil
}

// Pool solves the minimum-weight near-perfect matching of one pool.
//
// Stage 1: vertex per person, edge per mutual pair below LargeCost, weight
// cost.Quantize(cost, Scale). A weight outside ±cost.MaxWeight fails with
// ErrWeightOverflow instead of wrapping.
// Stage 2: odd pool ⇒ dummy vertex linked to all at (max real weight + 1).
// Stage 3: blossom.MinWeightMaxCardinality; drop dummy edges; re-validate.
//
// Complexity: O(n²·c + n³).
func Pool(people []*person.Person, model cost.Model, opts Options) ([]person.Match, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if len(people) < 2 {
		return nil, nil
	}
	large := opts.large()
	byID := make(map[string]*person.Person, len(people))
	costs := make(map[person.PairKey]float64)

	g := core.NewGraph()
	for _, p := range people {
		byID[string(p.ID)] = p
		if err := g.AddVertex(string(p.ID)); err != nil {
			return nil, err
		}
	}
	for i, a := range people {
		for _, b := range people[i+1:] {
			if !eligibility.MutualPair(a, b, opts.Eligibility) {
				continue
			}
			c := model.Cost(a, b)
			if cost.IsBlocked(c, large) {
				continue
			}
			w, err := cost.Quantize(c, opts.Scale)
			if err != nil {
				return nil, fmt.Errorf("optimize: %s-%s: %w", a.ID, b.ID, err)
			}
			if err := g.AddEdge(string(a.ID), string(b.ID), w); err != nil {
				return nil, err
			}
			costs[person.MakePairKey(a.ID, b.ID)] = c
		}
	}

	dummy := ""
	if len(people)%2 == 1 && g.EdgeCount() > 0 {
		dummy = dummyID
		for byID[dummy] != nil {
			dummy += "~"
		}
		w := g.MaxWeight() + 1
		if w > cost.MaxWeight {
			return nil, fmt.Errorf("optimize: dummy weight %d: %w", w, ErrWeightOverflow)
		}
		for _, p := range people {
			if err := g.AddEdge(dummy, string(p.ID), w); err != nil {
				return nil, err
			}
		}
	}

	pairs, err := blossom.MinWeightMaxCardinality(g)
	if err != nil {
		return nil, err
	}

	var out []person.Match
	for _, e := range pairs {
		if e.From == dummy || e.To == dummy {
			continue
		}
		a, b := byID[e.From], byID[e.To]
		if a == nil || b == nil || !eligibility.MutualPair(a, b, opts.Eligibility) {
			continue
		}
		out = append(out, newMatch(a.ID, b.ID, costs[person.MakePairKey(a.ID, b.ID)]))
	}
	person.SortMatches(out)

	return out, nil
}

func newMatch(a, b person.ID, c float64) person.Match {
	k := person.MakePairKey(a, b)

	return person.Match{A: k.Lo, B: k.Hi, Cost: c}
}
