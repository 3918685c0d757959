// SPDX-License-Identifier: MIT
//
// Package preference builds the ordered preference lists every matching
// stage consumes.
//
// Two entry points:
//
//	Build      - score every eligible partner with a cost.Scorer, sort
//	             ascending by score, ties broken by ID (reproducible).
//	Normalize  - keep caller-supplied ranked lists but drop self, duplicate,
//	             unknown and ineligible entries, preserving order.
//
// Both write through person.Population.SetPreferences so that rank lookups
// stay in sync. After either call the invariant holds: a list never contains
// its owner and contains only partners eligible by the owner's rules.
//
// ScorerFunc adapts a plain function to cost.Scorer for callers that rank
// by something other than a cost model.
package preference

import (
	"errors"
	"sort"

	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/person"
)

// ErrNilPopulation is returned when no population is supplied.
var ErrNilPopulation = errors.New("preference: nil population")

// ErrNilScorer is returned by Build without a scorer.
var ErrNilScorer = errors.New("preference: nil scorer")

// Options configures list construction.
type Options struct {
	// Eligibility is forwarded to the predicate (age filter, excluded pairs).
	Eligibility eligibility.Options

	// Limit truncates each list to its first Limit entries (0 = unlimited).
	Limit int
}

// Table is a read-only view of the built lists (person ID → ordered partners).
type Table map[person.ID][]person.ID

type scored struct {
	id    person.ID
	score float64
}

// Build computes a.Preferences for every person a in pop.
//
// Stage 1: collect the eligible partners of a (eligibility.Candidates).
// Stage 2: score each with scorer.Score(a, b).
// Stage 3: sort by (score asc, ID asc) and store.
//
// Complexity: O(n² · s + n² log n) with s the scorer cost.
func Build(pop *person.Population, scorer cost.Scorer, opts Options) (Table, error) {
	if pop == nil {
		return nil, ErrNilPopulation
	}
	if scorer == nil {
		return nil, ErrNilScorer
	}
	people := pop.People()
	table := make(Table, len(people))
	buf := make([]scored, 0, len(people))
	for _, a := range people {
		buf = buf[:0]
		for _, b := range eligibility.Candidates(a, pop, opts.Eligibility) {
			buf = append(buf, scored{id: b.ID, score: scorer.Score(a, b)})
		}
		sort.Slice(buf, func(i, j int) bool {
			if buf[i].score != buf[j].score {
				return buf[i].score < buf[j].score
			}
			return buf[i].id < buf[j].id
		})
		list := make([]person.ID, 0, len(buf))
		for _, s := range buf {
			list = append(list, s.id)
		}
		list = truncate(list, opts.Limit)
		if err := pop.SetPreferences(a.ID, list); err != nil {
			return nil, err
		}
		table[a.ID] = list
	}

	return table, nil
}

// Normalize filters the existing lists of pop in place, preserving order.
// Complexity: O(Σ|prefs|).
func Normalize(pop *person.Population, opts Options) (Table, error) {
	if pop == nil {
		return nil, ErrNilPopulation
	}
	table := make(Table, pop.Len())
	for _, a := range pop.People() {
		seen := make(map[person.ID]struct{}, len(a.Preferences))
		list := make([]person.ID, 0, len(a.Preferences))
		for _, id := range a.Preferences {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			b := pop.Get(id)
			if b == nil || !eligibility.Eligible(a, b, opts.Eligibility) {
				continue
			}
			list = append(list, id)
		}
		list = truncate(list, opts.Limit)
		if err := pop.SetPreferences(a.ID, list); err != nil {
			return nil, err
		}
		table[a.ID] = list
	}

	return table, nil
}

func truncate(list []person.ID, limit int) []person.ID {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}

	return list
}

// ScorerFunc adapts a plain function to cost.Scorer.
type ScorerFunc func(a, b *person.Person) float64

// Score implements cost.Scorer.
func (f ScorerFunc) Score(a, b *person.Person) float64 { return f(a, b) }
