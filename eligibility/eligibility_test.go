// SPDX-License-Identifier: MIT
package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/person"
)

func p(id string, g person.Gender, o person.Orientation, age int) *person.Person {
	return &person.Person{ID: person.ID(id), Gender: g, Orientation: o, Age: age}
}

func TestEligible_Self(t *testing.T) {
	a := p("a", person.Male, person.Bi, 30)
	assert.False(t, eligibility.Eligible(a, a, eligibility.DefaultOptions()))
	assert.False(t, eligibility.Eligible(a, nil, eligibility.DefaultOptions()))
}

func TestEligible_AgeFloor(t *testing.T) {
	opts := eligibility.DefaultOptions()
	adultM := p("m", person.Male, person.Straight, 30)
	adultW := p("w", person.Female, person.Straight, 18)
	minorM := p("mm", person.Male, person.Straight, 17)
	minorW := p("mw", person.Female, person.Straight, 16)

	assert.True(t, eligibility.Mutual(adultM, adultW, opts), "adults")
	assert.True(t, eligibility.Mutual(minorM, minorW, opts), "both minors")
	assert.False(t, eligibility.Eligible(minorM, adultW, opts), "cross minor/adult")
	assert.False(t, eligibility.Eligible(adultW, minorM, opts), "cross adult/minor")
}

func TestEligible_AgePreference(t *testing.T) {
	older := p("o", person.Male, person.Straight, 40)
	younger := p("y", person.Female, person.Straight, 25)
	younger.AgePreference = person.AgeLowerOrEqual // wants partners not older than 25

	off := eligibility.DefaultOptions()
	on := eligibility.Options{AgePreference: true}

	assert.True(t, eligibility.Mutual(older, younger, off), "filter disabled")
	assert.False(t, eligibility.Eligible(younger, older, on), "own preference rejects")
	assert.False(t, eligibility.Eligible(older, younger, on), "symmetric check from the other side")

	younger.AgePreference = person.AgeHigherOrEqual
	older.AgePreference = person.AgeLowerOrEqual
	assert.True(t, eligibility.Mutual(older, younger, on))

	older.AgePreference = person.AgeHigherOrEqual
	assert.False(t, eligibility.Mutual(older, younger, on))
}

func TestEligible_OrientationMatrix(t *testing.T) {
	opts := eligibility.DefaultOptions()
	sm := p("sm", person.Male, person.Straight, 30)
	sw := p("sw", person.Female, person.Straight, 30)
	gm := p("gm", person.Male, person.Gay, 30)
	gm2 := p("gm2", person.Male, person.Gay, 30)
	lw := p("lw", person.Female, person.Lesbian, 30)
	lw2 := p("lw2", person.Female, person.Lesbian, 30)
	bm := p("bm", person.Male, person.Bi, 30)
	bw := p("bw", person.Female, person.Bi, 30)

	tests := []struct {
		name string
		a, b *person.Person
		want bool
	}{
		{"straight M → straight W", sm, sw, true},
		{"straight M → straight M", sm, sm, false},
		{"straight M → bi W (rejects bi)", sm, bw, false},
		{"straight M → lesbian W", sm, lw, false},
		{"gay → gay", gm, gm2, true},
		{"gay → bi M", gm, bm, true},
		{"gay → bi W", gm, bw, false},
		{"gay → straight M", gm, sm, false},
		{"lesbian → lesbian", lw, lw2, true},
		{"lesbian → bi W", lw, bw, true},
		{"lesbian → bi M", lw, bm, false},
		{"bi M → straight W (rejects bi)", bm, sw, false},
		{"bi M → gay M", bm, gm, true},
		{"bi W → gay M", bw, gm, false},
		{"bi M → lesbian W", bm, lw, false},
		{"bi W → lesbian W", bw, lw, true},
		{"bi M → bi W", bm, bw, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eligibility.Eligible(tc.a, tc.b, opts))
		})
	}

	sm.AcceptsBi = true
	sw.AcceptsBi = true
	assert.True(t, eligibility.Eligible(sm, bw, opts), "straight accepting bi")
	assert.True(t, eligibility.Mutual(sm, bw, opts))
	assert.True(t, eligibility.Eligible(bm, sw, opts))
	assert.False(t, eligibility.Mutual(bm, sm, opts), "straight man never accepts a man")
}

func TestEligible_Exclude(t *testing.T) {
	a := p("a", person.Male, person.Gay, 30)
	b := p("b", person.Male, person.Gay, 30)
	ex := person.PairSet{}
	ex.Add("b", "a")
	assert.True(t, eligibility.Mutual(a, b, eligibility.DefaultOptions()))
	assert.False(t, eligibility.Mutual(a, b, eligibility.Options{Exclude: ex}))
}

func TestCandidates(t *testing.T) {
	sm := p("sm", person.Male, person.Straight, 30)
	pop := person.MustPopulation(sm,
		p("sw", person.Female, person.Straight, 30),
		p("gm", person.Male, person.Gay, 30),
		p("sw2", person.Female, person.Straight, 30),
	)
	got := eligibility.Candidates(sm, pop, eligibility.DefaultOptions())
	assert.Len(t, got, 2)
	assert.Equal(t, person.ID("sw"), got[0].ID)
	assert.Equal(t, person.ID("sw2"), got[1].ID)
}

func TestMutualPair_RequiresBothLists(t *testing.T) {
	a := p("a", person.Male, person.Straight, 30)
	b := p("b", person.Female, person.Straight, 30)
	b.Preferences = []person.ID{"a"}
	opts := eligibility.DefaultOptions()

	assert.True(t, eligibility.Mutual(a, b, opts))
	assert.True(t, eligibility.Listed(b, a))
	assert.False(t, eligibility.Listed(a, b))
	assert.False(t, eligibility.MutualPair(a, b, opts), "a does not list b")

	a.Preferences = []person.ID{"b"}
	assert.True(t, eligibility.MutualPair(a, b, opts))
	assert.False(t, eligibility.Listed(nil, b))
}
