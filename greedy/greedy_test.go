// SPDX-License-Identifier: MIT
package greedy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/greedy"
	"github.com/katalvlaran/pairing/person"
)

func st(id string, g person.Gender, prefs ...person.ID) *person.Person {
	return &person.Person{ID: person.ID(id), Gender: g, Orientation: person.Straight, Age: 30, Preferences: prefs}
}

// randomStraight builds n men and n women with random complete lists.
func randomStraight(n int, seed int64) *person.Population {
	rng := rand.New(rand.NewSource(seed))
	var men, women []*person.Person
	for i := 0; i < n; i++ {
		men = append(men, st("m"+string(rune('a'+i)), person.Male))
		women = append(women, st("w"+string(rune('a'+i)), person.Female))
	}
	for _, m := range men {
		for _, j := range rng.Perm(n) {
			m.Preferences = append(m.Preferences, women[j].ID)
		}
	}
	for _, w := range women {
		for _, j := range rng.Perm(n) {
			w.Preferences = append(w.Preferences, men[j].ID)
		}
	}

	return person.MustPopulation(append(men, women...)...)
}

func TestCandidatePairs_MutualOnly(t *testing.T) {
	// a lists b, b does not list a → never a candidate.
	pop := person.MustPopulation(
		st("a", person.Male, "b", "c"),
		st("b", person.Female),
		st("c", person.Female, "a"),
	)
	cands, err := greedy.CandidatePairs(pop, cost.NewRankSum(pop), greedy.Options{})
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, person.ID("a"), cands[0].A)
	assert.Equal(t, person.ID("c"), cands[0].B)
	assert.Equal(t, 3.0, cands[0].Cost, "rank 2 + rank 1")
}

func TestCandidatePairs_Errors(t *testing.T) {
	_, err := greedy.CandidatePairs(nil, cost.Similarity{}, greedy.Options{})
	assert.ErrorIs(t, err, greedy.ErrNilPopulation)
	_, err = greedy.Match(person.MustPopulation(), nil, greedy.Options{})
	assert.ErrorIs(t, err, greedy.ErrNilModel)
}

func TestMatch_PicksCheapestFirst(t *testing.T) {
	// m1 and w1 are each other's first choice: cost 2. m2–w2 cost 4.
	pop := person.MustPopulation(
		st("m1", person.Male, "w1", "w2"),
		st("m2", person.Male, "w1", "w2"),
		st("w1", person.Female, "m1", "m2"),
		st("w2", person.Female, "m1", "m2"),
	)
	res, err := greedy.Match(pop, cost.NewRankSum(pop), greedy.Options{})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, person.Match{A: "m1", B: "w1", Cost: 2}, res.Matches[0])
	assert.Equal(t, person.Match{A: "m2", B: "w2", Cost: 4}, res.Matches[1])
	assert.Empty(t, res.Unmatched)
}

func TestMatch_UnmatchedRemainderForwarded(t *testing.T) {
	pop := person.MustPopulation(
		st("m1", person.Male, "w1"),
		st("m2", person.Male, "w1"),
		st("w1", person.Female, "m2", "m1"),
	)
	res, err := greedy.Match(pop, cost.NewRankSum(pop), greedy.Options{})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1, "floor(3/2) = 1")
	assert.Equal(t, []person.ID{"m1"}, res.Unmatched)
}

func TestMatch_LargeCostNeverCommitted(t *testing.T) {
	pop := person.MustPopulation(
		st("m1", person.Male, "w1"),
		st("w1", person.Female, "m1"),
	)
	res, err := greedy.Match(pop, cost.NewRankSum(pop), greedy.Options{LargeCost: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, []person.ID{"m1", "w1"}, res.Unmatched)
}

func TestMatch_ExcludedPairsSkipped(t *testing.T) {
	pop := person.MustPopulation(
		st("m1", person.Male, "w1"),
		st("w1", person.Female, "m1"),
	)
	ex := person.PairSet{}
	ex.Add("m1", "w1")
	res, err := greedy.Match(pop, cost.NewRankSum(pop), greedy.Options{Eligibility: eligibility.Options{Exclude: ex}})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

// TestMatch_Properties checks no double matching and greedy monotonicity:
// at every commit, no still-available mutual pair was cheaper.
func TestMatch_Properties(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		pop := randomStraight(6, seed)
		model := cost.NewRankSum(pop)
		res, err := greedy.Match(pop, model, greedy.Options{})
		require.NoError(t, err)

		cands, err := greedy.CandidatePairs(pop, model, greedy.Options{})
		require.NoError(t, err)

		used := map[person.ID]bool{}
		for _, m := range res.Matches {
			assert.False(t, used[m.A], "double match %s", m.A)
			assert.False(t, used[m.B], "double match %s", m.B)
			for _, c := range cands {
				if !used[c.A] && !used[c.B] {
					assert.LessOrEqual(t, m.Cost, c.Cost, "seed %d: cheaper free pair %v skipped", seed, c)
				}
			}
			used[m.A], used[m.B] = true, true
			assert.True(t, eligibility.Mutual(pop.Get(m.A), pop.Get(m.B), eligibility.DefaultOptions()))
		}
		assert.Len(t, res.Matches, 6, "complete lists ⇒ perfect greedy matching")
	}
}
