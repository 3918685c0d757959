// SPDX-License-Identifier: MIT
//
// Package greedy implements Stage 1 of the pipeline: a global greedy
// matching that repeatedly commits the cheapest remaining mutual pair.
//
// Algorithm:
//  1. Enumerate every mutual CandidatePair once (canonical sorted-ID key),
//     i.e. a lists b, b lists a and both pass the eligibility predicate.
//  2. Cost each pair with the configured cost.Model.
//  3. Push all pairs onto a min-heap keyed by (cost, key).
//  4. Pop until the heap is empty or ⌊n/2⌋ pairs are committed; commit a
//     pair only if both endpoints are still free. Committed pairs are never
//     revisited.
//
// The result is maximal but not globally optimal; it seeds the re-optimizing
// stages and is forwarded together with the unmatched remainder.
//
// Complexity: O(P log P) time, O(P) memory, with P the number of mutual pairs.
package greedy

import (
	"container/heap"
	"errors"
	"sort"

	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNilPopulation is returned when no population is supplied.
	ErrNilPopulation = errors.New("greedy: nil population")

	// ErrNilModel is returned when no cost model is supplied.
	ErrNilModel = errors.New("greedy: nil cost model")
)

// Candidate is a mutual pair with its cost. A < B lexicographically.
type Candidate struct {
	A, B person.ID
	Cost float64
}

// Key returns the canonical key of the pair.
func (c Candidate) Key() person.PairKey { return person.PairKey{Lo: c.A, Hi: c.B} }

// less orders candidates by (cost, A, B).
func (c Candidate) less(o Candidate) bool {
	if c.Cost != o.Cost {
		return c.Cost < o.Cost
	}
	if c.A != o.A {
		return c.A < o.A
	}

	return c.B < o.B
}

// Options configures the greedy stage.
type Options struct {
	// LargeCost excludes pairs whose cost reaches it. Zero means cost.DefaultLargeCost.
	LargeCost float64

	// Eligibility is forwarded to the mutuality check.
	Eligibility eligibility.Options
}

func (o Options) large() float64 {
	if o.LargeCost > 0 {
		return o.LargeCost
	}

	return cost.DefaultLargeCost
}

// Result is the output of the greedy stage.
type Result struct {
	// Matches are the committed pairs in commit order (non-decreasing cost).
	Matches []person.Match

	// Unmatched lists, in population order, everyone left without a partner.
	Unmatched []person.ID
}

// CandidatePairs enumerates all mutual pairs of pop, sorted by (cost, key).
// Complexity: O(Σ|prefs| + P log P).
func CandidatePairs(pop *person.Population, model cost.Model, opts Options) ([]Candidate, error) {
	if pop == nil {
		return nil, ErrNilPopulation
	}
	if model == nil {
		return nil, ErrNilModel
	}
	seen := make(map[person.PairKey]struct{})
	var out []Candidate
	for _, a := range pop.People() {
		for _, bid := range a.Preferences {
			key := person.MakePairKey(a.ID, bid)
			if _, dup := seen[key]; dup {
				continue
			}
			b := pop.Get(bid)
			if b == nil || !pop.Lists(bid, a.ID) || !eligibility.Mutual(a, b, opts.Eligibility) {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, Candidate{A: key.Lo, B: key.Hi, Cost: model.Cost(a, b)})
		}
	}
	sortCandidates(out)

	return out, nil
}

// Match runs the greedy stage over pop.
func Match(pop *person.Population, model cost.Model, opts Options) (Result, error) {
	cands, err := CandidatePairs(pop, model, opts)
	if err != nil {
		return Result{}, err
	}
	limit := pop.Len() / 2
	large := opts.large()

	pq := candidateHeap(cands)
	heap.Init(&pq)

	matched := make(map[person.ID]struct{}, pop.Len())
	res := Result{Matches: make([]person.Match, 0, limit)}
	for pq.Len() > 0 && len(res.Matches) < limit {
		c := heap.Pop(&pq).(Candidate)
		if cost.IsBlocked(c.Cost, large) {
			break // every remaining pair is at least as expensive
		}
		if _, ok := matched[c.A]; ok {
			continue
		}
		if _, ok := matched[c.B]; ok {
			continue
		}
		matched[c.A] = struct{}{}
		matched[c.B] = struct{}{}
		res.Matches = append(res.Matches, person.Match{A: c.A, B: c.B, Cost: c.Cost})
	}
	for _, id := range pop.IDs() {
		if _, ok := matched[id]; !ok {
			res.Unmatched = append(res.Unmatched, id)
		}
	}

	return res, nil
}

func sortCandidates(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].less(cs[j]) })
}

// candidateHeap is a min-heap of candidates ordered by Candidate.less.
type candidateHeap []Candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(Candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]

	return it
}
