// SPDX-License-Identifier: MIT
//
// Package stable implements deferred acceptance (Gale–Shapley) and the hybrid
// matcher that intersects both proposing directions and resolves the rest
// with the bipartite optimizer.
//
// Matcher state (each proposer's cursor into its list and everyone's current
// partner) lives in maps owned by a single call. Persons are never mutated,
// so repeated runs over the same population need no reset.
//
// Acceptance rule: a receiver considers only proposers that form a mutual
// pair with it (see eligibility.MutualPair). A free receiver accepts at once;
// an engaged one switches only when it strictly prefers the newcomer, and an
// unlisted current partner is always dominated.
package stable

import (
	"errors"

	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/optimize"
	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNilPopulation is returned when no population is supplied.
	ErrNilPopulation = errors.New("stable: nil population")

	// ErrNilModel is returned by Hybrid without a cost model.
	ErrNilModel = errors.New("stable: nil cost model")
)

// Options configures deferred acceptance.
type Options struct {
	// Eligibility is forwarded to the mutuality check. Its Exclude set skips
	// pairs matched in earlier rounds.
	Eligibility eligibility.Options

	// Model annotates each produced Match with its cost. Nil leaves Cost 0.
	Model cost.Model

	// Optimize configures the leftover solve of Hybrid.
	Optimize optimize.Options
}

// Result is the output of one deferred-acceptance run.
type Result struct {
	// Matches are canonical (A < B) pairs sorted by A.
	Matches []person.Match

	// Unmatched lists proposers left single, in input order.
	Unmatched []person.ID

	// Rounds counts proposal rounds until no free proposer could propose.
	Rounds int

	// Proposals counts every proposal made.
	Proposals int
}

// DeferredAcceptance runs proposer-optimal deferred acceptance.
//
// Each round every free proposer with list entries left proposes to its next
// entry. Entries outside receivers, excluded pairs and non-mutual pairs are
// skipped. Every cursor only advances, so the loop ends after at most
// Σ|lists| proposals.
//
// Complexity: O(Σ|lists|) proposals, each O(1).
func DeferredAcceptance(proposers, receivers []*person.Person, pop *person.Population, opts Options) (Result, error) {
	if pop == nil {
		return Result{}, ErrNilPopulation
	}
	recv := make(map[person.ID]*person.Person, len(receivers))
	for _, r := range receivers {
		recv[r.ID] = r
	}

	prop := make(map[person.ID]*person.Person, len(proposers))
	for _, p := range proposers {
		prop[p.ID] = p
	}
	cursor := make(map[person.ID]int, len(proposers))
	partner := make(map[person.ID]person.ID, len(proposers)+len(receivers))

	var res Result
	free := append([]*person.Person(nil), proposers...)
	for len(free) > 0 {
		res.Rounds++
		var next []*person.Person
		for _, p := range free {
			r := nextReceiver(p, cursor, recv, opts.Eligibility)
			if r == nil {
				continue // list exhausted, stays single
			}
			res.Proposals++
			current, engaged := partner[r.ID]
			switch {
			case !engaged:
				partner[r.ID], partner[p.ID] = p.ID, r.ID
			case pop.Prefers(r.ID, p.ID, current):
				delete(partner, current)
				partner[r.ID], partner[p.ID] = p.ID, r.ID
				next = append(next, prop[current])
			default:
				next = append(next, p)
			}
		}
		free = next
	}

	for _, p := range proposers {
		r, ok := partner[p.ID]
		if !ok {
			res.Unmatched = append(res.Unmatched, p.ID)
			continue
		}
		var c float64
		if opts.Model != nil {
			c = opts.Model.Cost(p, recv[r])
		}
		k := person.MakePairKey(p.ID, r)
		res.Matches = append(res.Matches, person.Match{A: k.Lo, B: k.Hi, Cost: c})
	}
	person.SortMatches(res.Matches)

	return res, nil
}

// nextReceiver advances p's cursor to the next acceptable receiver.
func nextReceiver(p *person.Person, cursor map[person.ID]int, recv map[person.ID]*person.Person, opts eligibility.Options) *person.Person {
	for cursor[p.ID] < len(p.Preferences) {
		id := p.Preferences[cursor[p.ID]]
		cursor[p.ID]++
		r, ok := recv[id]
		if !ok || !eligibility.MutualPair(p, r, opts) {
			continue
		}

		return r
	}

	return nil
}

// HybridResult is the output of Hybrid.
type HybridResult struct {
	// Matches is the union of agreed and resolved pairs.
	Matches []person.Match

	// Agreed are pairs produced by both proposing directions.
	Agreed []person.Match

	// Resolved are pairs the bipartite optimizer found among the leftovers.
	Resolved []person.Match
}

// Hybrid runs deferred acceptance with men proposing and with women
// proposing, keeps the pairs both runs agree on, and resolves everyone else
// with optimize.Bipartite.
func Hybrid(men, women []*person.Person, pop *person.Population, model cost.Model, opts Options) (HybridResult, error) {
	if pop == nil {
		return HybridResult{}, ErrNilPopulation
	}
	if model == nil {
		return HybridResult{}, ErrNilModel
	}
	opts.Model = model

	byMen, err := DeferredAcceptance(men, women, pop, opts)
	if err != nil {
		return HybridResult{}, err
	}
	byWomen, err := DeferredAcceptance(women, men, pop, opts)
	if err != nil {
		return HybridResult{}, err
	}

	fromWomen := make(person.PairSet, len(byWomen.Matches))
	for _, m := range byWomen.Matches {
		fromWomen.Add(m.A, m.B)
	}
	var res HybridResult
	taken := make(map[person.ID]struct{})
	for _, m := range byMen.Matches {
		if fromWomen.Has(m.A, m.B) {
			res.Agreed = append(res.Agreed, m)
			taken[m.A], taken[m.B] = struct{}{}, struct{}{}
		}
	}

	leftMen := remaining(men, taken)
	leftWomen := remaining(women, taken)
	oopts := opts.Optimize
	oopts.Eligibility = opts.Eligibility
	res.Resolved, err = optimize.Bipartite(leftMen, leftWomen, model, oopts)
	if err != nil {
		return HybridResult{}, err
	}

	res.Matches = append(append(res.Matches, res.Agreed...), res.Resolved...)
	person.SortMatches(res.Matches)

	return res, nil
}

func remaining(ps []*person.Person, taken map[person.ID]struct{}) []*person.Person {
	var out []*person.Person
	for _, p := range ps {
		if _, ok := taken[p.ID]; !ok {
			out = append(out, p)
		}
	}

	return out
}
