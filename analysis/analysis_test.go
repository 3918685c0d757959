// SPDX-License-Identifier: MIT
package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pairing/analysis"
	"github.com/katalvlaran/pairing/person"
)

func st(id string, g person.Gender, prefs ...person.ID) *person.Person {
	return &person.Person{ID: person.ID(id), Gender: g, Orientation: person.Straight, Age: 30, Preferences: prefs}
}

// classic 2×2 instance: both men prefer w1, both women prefer m1.
func twoByTwo() *person.Population {
	return person.MustPopulation(
		st("m1", person.Male, "w1", "w2"),
		st("m2", person.Male, "w1", "w2"),
		st("w1", person.Female, "m1", "m2"),
		st("w2", person.Female, "m1", "m2"),
	)
}

func TestStability_StableMatching(t *testing.T) {
	pop := twoByTwo()
	rep, err := analysis.Stability(pop, []person.Match{{A: "m1", B: "w1"}, {A: "m2", B: "w2"}})
	require.NoError(t, err)
	assert.True(t, rep.Stable())
	assert.Equal(t, 6, rep.PossiblePairs)
	assert.Zero(t, rep.PairPercent)
}

func TestStability_BlockingPair(t *testing.T) {
	pop := twoByTwo()
	rep, err := analysis.Stability(pop, []person.Match{{A: "m1", B: "w2"}, {A: "m2", B: "w1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.BlockingPairs, "m1 and w1 prefer each other")
	assert.Equal(t, []person.PairKey{{Lo: "m1", Hi: "w1"}}, rep.Blocking)
	assert.Equal(t, 2, rep.Individuals)
	assert.InDelta(t, 100.0/6, rep.PairPercent, 1e-9)
	assert.InDelta(t, 50.0, rep.IndividualsPercent, 1e-9)
}

func TestStability_UnmatchedPrefersAnyListed(t *testing.T) {
	pop := twoByTwo()
	rep, err := analysis.Stability(pop, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.BlockingPairs, "every listed cross pair blocks an empty matching")
	assert.Equal(t, 4, rep.Individuals)
}

func TestStability_Errors(t *testing.T) {
	_, err := analysis.Stability(nil, nil)
	assert.ErrorIs(t, err, analysis.ErrNilPopulation)
	_, err = analysis.Stability(twoByTwo(), []person.Match{{A: "m1", B: "ghost"}})
	assert.ErrorIs(t, err, analysis.ErrUnknownPerson)
}

func TestSummarize(t *testing.T) {
	s := analysis.Summarize([]int{3, 1, 2, 2, 40}, 2, 30)
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 9.6, s.Mean, 1e-9)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 2, s.Mode)
	assert.True(t, s.ModeUnique)
	assert.Equal(t, 3, s.TopKCount)
	assert.InDelta(t, 60.0, s.TopKPercent, 1e-9)
	assert.Equal(t, 1, s.BottomKCount)
	assert.InDelta(t, 20.0, s.BottomKPercent, 1e-9)
}

func TestSummarize_NoUniqueModeAndEvenMedian(t *testing.T) {
	s := analysis.Summarize([]int{4, 1, 4, 1}, 15, 30)
	assert.Equal(t, 2.5, s.Median)
	assert.Equal(t, 1, s.Mode)
	assert.False(t, s.ModeUnique)

	empty := analysis.Summarize(nil, 15, 30)
	assert.Zero(t, empty.N)
	assert.Zero(t, empty.TopKPercent)
}

func TestSatisfaction(t *testing.T) {
	pop := twoByTwo()
	matches := []person.Match{{A: "m1", B: "w2"}, {A: "m2", B: "w1"}}

	ranks, err := analysis.AchievedRanks(pop, matches)
	require.NoError(t, err)
	assert.Equal(t, map[person.ID]int{"m1": 2, "w2": 1, "m2": 1, "w1": 2}, ranks)

	s, err := analysis.Satisfaction(pop, matches, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 1.5, s.Mean)
	assert.Equal(t, 2, s.TopKCount)
	assert.Equal(t, 2, s.BottomKCount)
}

func TestSatisfactionByCategory(t *testing.T) {
	pop := twoByTwo()
	byCat, err := analysis.SatisfactionByCategory(pop, []person.Match{{A: "m1", B: "w1"}}, analysis.DefaultTopK, analysis.DefaultBottomK)
	require.NoError(t, err)
	assert.Len(t, byCat, len(person.Categories))
	assert.Equal(t, 1, byCat[person.CategoryStraightMen].N)
	assert.Equal(t, 1.0, byCat[person.CategoryStraightMen].Mean)
	assert.Equal(t, 1, byCat[person.CategoryStraightWomen].N)
	assert.Zero(t, byCat[person.CategoryGayMen].N)
}
