// SPDX-License-Identifier: MIT
//
// Package pools implements Stage 2 of the pipeline: it erases the greedy
// commitments of Stage 1 and re-pools every individual by orientation intent,
// so that each pool can be re-solved optimally on its own.
//
// Pool assignment:
//
//	matched pair M–W            → M to StraightMen, W to StraightWomen
//	matched pair M–M            → both to GayMen
//	matched pair W–W            → both to LesbianWomen
//	unmatched straight          → StraightMen / StraightWomen by gender
//	unmatched gay / lesbian     → GayMen / LesbianWomen
//	unmatched bi                → decided by BiPolicy
//
// Pools keep population order, so downstream solvers see a stable input.
package pools

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNilPopulation is returned when no population is supplied.
	ErrNilPopulation = errors.New("pools: nil population")

	// ErrUnknownPerson is returned when a match or the unmatched list names
	// an ID absent from the population.
	ErrUnknownPerson = errors.New("pools: unknown person")

	// ErrOverlap is returned when a person appears in two matches, or both
	// matched and unmatched.
	ErrOverlap = errors.New("pools: person listed twice")

	// ErrBadPolicy is returned for an unknown BiPolicy value.
	ErrBadPolicy = errors.New("pools: unknown bi policy")
)

// BiPolicy decides where an unmatched bisexual person is pooled.
type BiPolicy string

const (
	// BiOpposite pools unmatched bi people with the heterosexual pool of
	// their gender.
	BiOpposite BiPolicy = "opposite"

	// BiBoth pools them in the heterosexual AND the same-gender pool. A bi
	// person can then be matched twice; callers must de-duplicate, and the
	// partner of a dropped match is single until the leftovers are solved
	// again (the pipeline does this once).
	BiBoth BiPolicy = "both"

	// BiSame pools them only in the same-gender pool.
	BiSame BiPolicy = "same"
)

// Valid reports whether p is a known policy. The zero value is valid and
// means BiOpposite.
func (p BiPolicy) Valid() bool {
	switch p {
	case "", BiOpposite, BiBoth, BiSame:
		return true
	}

	return false
}

// Pools holds the four orientation pools.
type Pools struct {
	StraightMen   []*person.Person
	StraightWomen []*person.Person
	GayMen        []*person.Person
	LesbianWomen  []*person.Person
}

// Pool names, used by metrics and logs.
const (
	NameHetero  = "hetero"
	NameGay     = "gay_men"
	NameLesbian = "lesbian_women"
)

// Len returns the total number of pool entries (a bi person pooled twice
// counts twice).
func (p Pools) Len() int {
	return len(p.StraightMen) + len(p.StraightWomen) + len(p.GayMen) + len(p.LesbianWomen)
}

// Sizes returns the entry count of every pool keyed by category label.
func (p Pools) Sizes() map[string]int {
	return map[string]int{
		person.CategoryStraightMen:   len(p.StraightMen),
		person.CategoryStraightWomen: len(p.StraightWomen),
		person.CategoryGayMen:        len(p.GayMen),
		person.CategoryLesbianWomen:  len(p.LesbianWomen),
	}
}

// Decompose splits pop into the four pools.
//
// matches are the Stage-1 pairs and unmatched the Stage-1 remainder. Anyone in
// pop named by neither is treated as unmatched.
//
// Complexity: O(n + |matches|).
func Decompose(matches []person.Match, unmatched []person.ID, pop *person.Population, policy BiPolicy) (Pools, error) {
	if pop == nil {
		return Pools{}, ErrNilPopulation
	}
	if !policy.Valid() {
		return Pools{}, fmt.Errorf("%w: %q", ErrBadPolicy, policy)
	}
	if policy == "" {
		policy = BiOpposite
	}

	partner := make(map[person.ID]person.ID, 2*len(matches))
	for _, m := range matches {
		for _, id := range [2]person.ID{m.A, m.B} {
			if !pop.Has(id) {
				return Pools{}, fmt.Errorf("%w: %s", ErrUnknownPerson, id)
			}
			if _, dup := partner[id]; dup {
				return Pools{}, fmt.Errorf("%w: %s", ErrOverlap, id)
			}
		}
		partner[m.A], partner[m.B] = m.B, m.A
	}
	for _, id := range unmatched {
		if !pop.Has(id) {
			return Pools{}, fmt.Errorf("%w: %s", ErrUnknownPerson, id)
		}
		if _, dup := partner[id]; dup {
			return Pools{}, fmt.Errorf("%w: %s", ErrOverlap, id)
		}
	}

	var out Pools
	for _, p := range pop.People() {
		if q, ok := partner[p.ID]; ok {
			if pop.Get(q).Gender == p.Gender {
				out.addSame(p)
			} else {
				out.addHetero(p)
			}
			continue
		}
		switch p.Orientation {
		case person.Straight:
			out.addHetero(p)
		case person.Gay, person.Lesbian:
			out.addSame(p)
		case person.Bi:
			if policy != BiSame {
				out.addHetero(p)
			}
			if policy != BiOpposite {
				out.addSame(p)
			}
		}
	}

	return out, nil
}

func (p *Pools) addHetero(x *person.Person) {
	if x.Gender == person.Male {
		p.StraightMen = append(p.StraightMen, x)
	} else {
		p.StraightWomen = append(p.StraightWomen, x)
	}
}

func (p *Pools) addSame(x *person.Person) {
	if x.Gender == person.Male {
		p.GayMen = append(p.GayMen, x)
	} else {
		p.LesbianWomen = append(p.LesbianWomen, x)
	}
}
