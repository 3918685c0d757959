// SPDX-License-Identifier: MIT
//
// Package eligibility decides whether one person may consider another as a
// candidate partner.
//
// The predicate is pure and evaluated from ONE side: Eligible(a, b) applies
// a's orientation rules to b (plus the shared age rules). A pair is usable by
// the matching stages only when it is Mutual, i.e. eligible from both sides;
// this is the invariant that keeps every stage from producing unilateral
// matches.
//
// Rules, for evaluator a and candidate b:
//
//	self            a == b                      → ineligible
//	age floor       exactly one of a, b is < 18 → ineligible
//	age preference  (opt-in) a higher-or-equal  → reject b younger than a
//	                         a lower-or-equal   → reject b older than a
//	                         and the same test from b's side
//	straight a      b opposite gender and (straight, or bi if a accepts bi)
//	gay a           b of a's gender (male) and (gay or bi)
//	lesbian a       b of a's gender (female) and (lesbian or bi)
//	bi a            eligible unless b is straight and rejects bi partners,
//	                or b is a gay man while a is a woman,
//	                or b is a lesbian woman while a is a man
package eligibility

import "github.com/katalvlaran/pairing/person"

// Options configures the predicate.
type Options struct {
	// AgePreference enables the age-preference filter. Off by default.
	AgePreference bool

	// Exclude lists pairs that must never be considered (e.g. matched in an earlier round).
	Exclude person.PairSet
}

// DefaultOptions returns the default predicate configuration (age preference off).
func DefaultOptions() Options { return Options{} }

// Eligible reports whether a may consider b, by a's rules.
// Complexity: O(1).
func Eligible(a, b *person.Person, opts Options) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if !ageFloor(a, b) {
		return false
	}
	if opts.AgePreference && !(agePreferenceOK(a, b) && agePreferenceOK(b, a)) {
		return false
	}
	if opts.Exclude.Has(a.ID, b.ID) {
		return false
	}

	switch a.Orientation {
	case person.Straight:
		return straight(a, b)
	case person.Gay:
		return b.Gender == a.Gender && (b.Orientation == person.Gay || b.Orientation == person.Bi)
	case person.Lesbian:
		return b.Gender == a.Gender && (b.Orientation == person.Lesbian || b.Orientation == person.Bi)
	case person.Bi:
		return bi(a, b)
	}

	return false
}

// Mutual reports whether a and b are eligible for each other.
func Mutual(a, b *person.Person, opts Options) bool {
	return Eligible(a, b, opts) && Eligible(b, a, opts)
}

// Listed reports whether b appears in a's preference list.
// Complexity: O(|a.Preferences|).
func Listed(a, b *person.Person) bool {
	if a == nil || b == nil {
		return false
	}
	for _, id := range a.Preferences {
		if id == b.ID {
			return true
		}
	}

	return false
}

// MutualPair reports whether a and b form a mutual pair: eligible for each
// other and each listing the other.
func MutualPair(a, b *person.Person, opts Options) bool {
	return Mutual(a, b, opts) && Listed(a, b) && Listed(b, a)
}

// Candidates returns, in population order, every person a may consider.
// Complexity: O(n).
func Candidates(a *person.Person, pop *person.Population, opts Options) []*person.Person {
	var out []*person.Person
	for _, b := range pop.People() {
		if Eligible(a, b, opts) {
			out = append(out, b)
		}
	}

	return out
}

// ageFloor allows adult–adult and minor–minor pairs only.
func ageFloor(a, b *person.Person) bool {
	return a.Minor() == b.Minor()
}

// agePreferenceOK applies x's age preference to candidate y.
func agePreferenceOK(x, y *person.Person) bool {
	switch x.AgePreference {
	case person.AgeHigherOrEqual:
		return y.Age >= x.Age
	case person.AgeLowerOrEqual:
		return y.Age <= x.Age
	}

	return true
}

func straight(a, b *person.Person) bool {
	if b.Gender != a.Gender.Opposite() {
		return false
	}
	switch b.Orientation {
	case person.Straight:
		return true
	case person.Bi:
		return a.AcceptsBi
	}

	return false
}

func bi(a, b *person.Person) bool {
	switch b.Orientation {
	case person.Straight:
		return b.AcceptsBi
	case person.Gay:
		return !(b.Gender == person.Male && a.Gender == person.Female)
	case person.Lesbian:
		return !(b.Gender == person.Female && a.Gender == person.Male)
	}

	return true
}
