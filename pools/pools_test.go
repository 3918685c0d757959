// SPDX-License-Identifier: MIT
package pools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/pools"
)

func p(id string, g person.Gender, o person.Orientation) *person.Person {
	return &person.Person{ID: person.ID(id), Gender: g, Orientation: o, Age: 30}
}

func ids(ps []*person.Person) []person.ID {
	out := make([]person.ID, 0, len(ps))
	for _, x := range ps {
		out = append(out, x.ID)
	}
	return out
}

func fixture() *person.Population {
	return person.MustPopulation(
		p("sm", person.Male, person.Straight),
		p("sw", person.Female, person.Straight),
		p("g1", person.Male, person.Gay),
		p("bm", person.Male, person.Bi),
		p("l1", person.Female, person.Lesbian),
		p("bw", person.Female, person.Bi),
		p("sm2", person.Male, person.Straight),
	)
}

func TestDecompose_MatchedPairs(t *testing.T) {
	pop := fixture()
	matches := []person.Match{
		{A: "sm", B: "bw"}, // hetero pair with a bi woman
		{A: "g1", B: "bm"}, // same-gender pair with a bi man
	}
	got, err := pools.Decompose(matches, []person.ID{"sw", "l1", "sm2"}, pop, pools.BiBoth)
	require.NoError(t, err)

	assert.Equal(t, []person.ID{"sm", "sm2"}, ids(got.StraightMen))
	assert.Equal(t, []person.ID{"sw", "bw"}, ids(got.StraightWomen))
	assert.Equal(t, []person.ID{"g1", "bm"}, ids(got.GayMen), "matched bi follows the pair")
	assert.Equal(t, []person.ID{"l1"}, ids(got.LesbianWomen))
	assert.Equal(t, pop.Len(), got.Len())
}

func TestDecompose_BiPolicies(t *testing.T) {
	pop := fixture()
	unmatched := pop.IDs()

	tests := []struct {
		policy   pools.BiPolicy
		sm, gm   []person.ID
		sw, lw   []person.ID
		totalLen int
	}{
		{pools.BiOpposite, []person.ID{"sm", "bm", "sm2"}, []person.ID{"g1"}, []person.ID{"sw", "bw"}, []person.ID{"l1"}, 7},
		{"", []person.ID{"sm", "bm", "sm2"}, []person.ID{"g1"}, []person.ID{"sw", "bw"}, []person.ID{"l1"}, 7},
		{pools.BiSame, []person.ID{"sm", "sm2"}, []person.ID{"g1", "bm"}, []person.ID{"sw"}, []person.ID{"l1", "bw"}, 7},
		{pools.BiBoth, []person.ID{"sm", "bm", "sm2"}, []person.ID{"g1", "bm"}, []person.ID{"sw", "bw"}, []person.ID{"l1", "bw"}, 9},
	}
	for _, tc := range tests {
		t.Run(string(tc.policy), func(t *testing.T) {
			got, err := pools.Decompose(nil, unmatched, pop, tc.policy)
			require.NoError(t, err)
			assert.Equal(t, tc.sm, ids(got.StraightMen))
			assert.Equal(t, tc.gm, ids(got.GayMen))
			assert.Equal(t, tc.sw, ids(got.StraightWomen))
			assert.Equal(t, tc.lw, ids(got.LesbianWomen))
			assert.Equal(t, tc.totalLen, got.Len())
		})
	}
}

func TestDecompose_Errors(t *testing.T) {
	pop := fixture()

	_, err := pools.Decompose(nil, nil, nil, pools.BiOpposite)
	assert.ErrorIs(t, err, pools.ErrNilPopulation)

	_, err = pools.Decompose(nil, nil, pop, "sometimes")
	assert.ErrorIs(t, err, pools.ErrBadPolicy)

	_, err = pools.Decompose([]person.Match{{A: "sm", B: "ghost"}}, nil, pop, pools.BiOpposite)
	assert.ErrorIs(t, err, pools.ErrUnknownPerson)

	_, err = pools.Decompose([]person.Match{{A: "sm", B: "sw"}, {A: "sm", B: "bw"}}, nil, pop, pools.BiOpposite)
	assert.ErrorIs(t, err, pools.ErrOverlap)

	_, err = pools.Decompose([]person.Match{{A: "sm", B: "sw"}}, []person.ID{"sw"}, pop, pools.BiOpposite)
	assert.ErrorIs(t, err, pools.ErrOverlap)
}

func TestPools_Sizes(t *testing.T) {
	got, err := pools.Decompose(nil, nil, fixture(), pools.BiOpposite)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		person.CategoryStraightMen:   3,
		person.CategoryStraightWomen: 2,
		person.CategoryGayMen:        1,
		person.CategoryLesbianWomen:  1,
	}, got.Sizes())
}
