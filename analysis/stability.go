// SPDX-License-Identifier: MIT

package analysis

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNilPopulation is returned when no population is supplied.
	ErrNilPopulation = errors.New("analysis: nil population")

	// ErrUnknownPerson is returned when a match names an ID absent from the population.
	ErrUnknownPerson = errors.New("analysis: unknown person")
)

// StabilityReport summarises the blocking pairs of a matching.
type StabilityReport struct {
	BlockingPairs      int              `json:"blocking_pairs"`
	PossiblePairs      int              `json:"possible_pairs"`
	PairPercent        float64          `json:"pair_percent"`
	Individuals        int              `json:"individuals_involved"`
	IndividualsPercent float64          `json:"individuals_percent"`
	Blocking           []person.PairKey `json:"-"`
}

// Stable reports whether no blocking pair exists.
func (r StabilityReport) Stable() bool { return r.BlockingPairs == 0 }

// Stability counts blocking pairs over every unordered pair of pop.
// Complexity: O(n²).
func Stability(pop *person.Population, matches []person.Match) (StabilityReport, error) {
	if pop == nil {
		return StabilityReport{}, ErrNilPopulation
	}
	partner, err := partners(pop, matches)
	if err != nil {
		return StabilityReport{}, err
	}

	people := pop.People()
	n := len(people)
	involved := make(map[person.ID]struct{})
	var rep StabilityReport
	for i, p := range people {
		for _, q := range people[i+1:] {
			if partner[p.ID] == q.ID {
				continue
			}
			if pop.Prefers(p.ID, q.ID, partner[p.ID]) && pop.Prefers(q.ID, p.ID, partner[q.ID]) {
				rep.BlockingPairs++
				rep.Blocking = append(rep.Blocking, person.MakePairKey(p.ID, q.ID))
				involved[p.ID], involved[q.ID] = struct{}{}, struct{}{}
			}
		}
	}
	rep.PossiblePairs = n * (n - 1) / 2
	rep.PairPercent = percent(rep.BlockingPairs, rep.PossiblePairs)
	rep.Individuals = len(involved)
	rep.IndividualsPercent = percent(rep.Individuals, n)

	return rep, nil
}

// partners builds the partner map and checks every ID is known.
func partners(pop *person.Population, matches []person.Match) (map[person.ID]person.ID, error) {
	for _, m := range matches {
		for _, id := range [2]person.ID{m.A, m.B} {
			if !pop.Has(id) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPerson, id)
			}
		}
	}

	return person.Partners(matches), nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}

	return float64(part) / float64(whole) * 100
}
