// SPDX-License-Identifier: MIT

package person

import (
	"fmt"
	"sort"
)

// Population is an ordered, ID-indexed snapshot of persons.
//
// The rank index mirrors every person's Preferences; mutate preference lists
// only through SetPreferences so that Rank stays consistent.
// Population is not safe for concurrent mutation; concurrent reads are fine.
type Population struct {
	people []*Person
	index  map[ID]int
	ranks  map[ID]map[ID]int // ranks[a][b] = 1-based position of b in a.Preferences
}

// NewPopulation indexes people in input order.
//
// Errors: ErrNilPerson, ErrDuplicateID (wrapped with the offending ID).
// Complexity: O(n + Σ|prefs|).
func NewPopulation(people []*Person) (*Population, error) {
	pop := &Population{
		people: make([]*Person, 0, len(people)),
		index:  make(map[ID]int, len(people)),
		ranks:  make(map[ID]map[ID]int, len(people)),
	}
	for i, p := range people {
		if p == nil {
			return nil, fmt.Errorf("record %d: %w", i, ErrNilPerson)
		}
		if _, dup := pop.index[p.ID]; dup {
			return nil, fmt.Errorf("id %q: %w", p.ID, ErrDuplicateID)
		}
		pop.index[p.ID] = len(pop.people)
		pop.people = append(pop.people, p)
		pop.ranks[p.ID] = rankIndex(p.Preferences)
	}

	return pop, nil
}

// MustPopulation is NewPopulation for fixtures; it panics on error.
func MustPopulation(people ...*Person) *Population {
	pop, err := NewPopulation(people)
	if err != nil {
		panic(err)
	}

	return pop
}

func rankIndex(prefs []ID) map[ID]int {
	idx := make(map[ID]int, len(prefs))
	for i, id := range prefs {
		if _, seen := idx[id]; !seen {
			idx[id] = i + 1
		}
	}

	return idx
}

// Len returns the number of persons.
func (pop *Population) Len() int { return len(pop.people) }

// People returns the persons in input order. The slice is shared; do not append.
func (pop *Population) People() []*Person { return pop.people }

// IDs returns all IDs in input order.
func (pop *Population) IDs() []ID {
	out := make([]ID, len(pop.people))
	for i, p := range pop.people {
		out[i] = p.ID
	}

	return out
}

// SortedIDs returns all IDs in ascending order.
func (pop *Population) SortedIDs() []ID {
	out := pop.IDs()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Get returns the person with the given ID, or nil.
func (pop *Population) Get(id ID) *Person {
	i, ok := pop.index[id]
	if !ok {
		return nil
	}

	return pop.people[i]
}

// Lookup is Get with an error for absent IDs.
func (pop *Population) Lookup(id ID) (*Person, error) {
	if p := pop.Get(id); p != nil {
		return p, nil
	}

	return nil, fmt.Errorf("id %q: %w", id, ErrUnknownID)
}

// Has reports whether id belongs to the population.
func (pop *Population) Has(id ID) bool {
	_, ok := pop.index[id]
	return ok
}

// Rank returns the 1-based position of b in a's preference list, or 0 when
// b is not listed (or a is unknown).
// Complexity: O(1).
func (pop *Population) Rank(a, b ID) int {
	return pop.ranks[a][b]
}

// Lists reports whether a lists b.
func (pop *Population) Lists(a, b ID) bool { return pop.Rank(a, b) > 0 }

// Prefers reports whether a strictly prefers cand over current.
// An unlisted cand is never preferred; an unlisted (or empty) current is
// dominated by any listed cand.
func (pop *Population) Prefers(a, cand, current ID) bool {
	rc := pop.Rank(a, cand)
	if rc == 0 {
		return false
	}
	rcur := pop.Rank(a, current)
	if current == "" || rcur == 0 {
		return true
	}

	return rc < rcur
}

// SetPreferences replaces a's preference list and refreshes its rank index.
func (pop *Population) SetPreferences(a ID, prefs []ID) error {
	p := pop.Get(a)
	if p == nil {
		return fmt.Errorf("id %q: %w", a, ErrUnknownID)
	}
	p.Preferences = prefs
	pop.ranks[a] = rankIndex(prefs)

	return nil
}

// Subset returns the persons for ids, skipping unknown IDs.
func (pop *Population) Subset(ids []ID) []*Person {
	out := make([]*Person, 0, len(ids))
	for _, id := range ids {
		if p := pop.Get(id); p != nil {
			out = append(out, p)
		}
	}

	return out
}

// GenderRatio counts persons per gender and orientation.
type GenderRatio struct {
	Men, Women         int
	ByOrientation      map[Orientation]int
	ByCategory         map[string]int
	MenToWomen         float64 // Men / Women, 0 when there are no women
	StraightMenToWomen float64 // straight men / straight women, 0 when none
}

// Ratio summarises the gender balance of the population.
func (pop *Population) Ratio() GenderRatio {
	var straightM, straightW int
	r := GenderRatio{
		ByOrientation: make(map[Orientation]int, 4),
		ByCategory:    make(map[string]int, len(Categories)),
	}
	for _, p := range pop.people {
		if p.Gender == Male {
			r.Men++
		} else {
			r.Women++
		}
		r.ByOrientation[p.Orientation]++
		r.ByCategory[Category(p)]++
		if p.Orientation == Straight {
			if p.Gender == Male {
				straightM++
			} else {
				straightW++
			}
		}
	}
	if r.Women > 0 {
		r.MenToWomen = float64(r.Men) / float64(r.Women)
	}
	if straightW > 0 {
		r.StraightMenToWomen = float64(straightM) / float64(straightW)
	}

	return r
}
