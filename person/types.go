// SPDX-License-Identifier: MIT

package person

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sentinel errors for the person package.
var (
	// ErrNilPerson indicates that a nil *Person was passed where a record is required.
	ErrNilPerson = errors.New("person: nil person")

	// ErrDuplicateID indicates that two records share the same ID.
	ErrDuplicateID = errors.New("person: duplicate id")

	// ErrUnknownID indicates that an ID is not part of the population.
	ErrUnknownID = errors.New("person: unknown id")

	// ErrInvalidPopulation indicates a violation of the input contract.
	ErrInvalidPopulation = errors.New("person: invalid population")

	// ErrBadEnum indicates an unparsable gender, orientation or age preference.
	ErrBadEnum = errors.New("person: unknown enum value")
)

// ID is the stable identifier of a person.
type ID string

// Gender is the binary gender tag used by the eligibility rules.
type Gender string

const (
	// Male is the "M" gender tag.
	Male Gender = "M"
	// Female is the "W" gender tag.
	Female Gender = "W"
)

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == Male {
		return Female
	}

	return Male
}

// UnmarshalText accepts "M"/"W" as well as the long forms used by user tables.
func (g *Gender) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "m", "male", "man":
		*g = Male
	case "w", "f", "female", "woman":
		*g = Female
	default:
		return fmt.Errorf("gender %q: %w", text, ErrBadEnum)
	}

	return nil
}

// Orientation is the closed set of orientation tags.
type Orientation string

const (
	Straight Orientation = "straight"
	Gay      Orientation = "gay"
	Lesbian  Orientation = "lesbian"
	Bi       Orientation = "bi"
)

// UnmarshalText parses an orientation tag, case-insensitively ("bisexual" maps to Bi).
func (o *Orientation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "straight":
		*o = Straight
	case "gay":
		*o = Gay
	case "lesbian":
		*o = Lesbian
	case "bi", "bisexual":
		*o = Bi
	default:
		return fmt.Errorf("orientation %q: %w", text, ErrBadEnum)
	}

	return nil
}

// AgePreference encodes the partner age constraint of a person.
// The numeric codes match the user table: 1 higher-or-equal, 0 none, -1 lower-or-equal.
type AgePreference int8

const (
	// AgeLowerOrEqual accepts partners not older than oneself.
	AgeLowerOrEqual AgePreference = -1
	// AgeAny expresses no age preference.
	AgeAny AgePreference = 0
	// AgeHigherOrEqual accepts partners not younger than oneself.
	AgeHigherOrEqual AgePreference = 1
)

// UnmarshalText accepts the numeric codes and the words higher/none/lower.
func (p *AgePreference) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "higher", "higher_or_equal", "older":
		*p = AgeHigherOrEqual
		return nil
	case "", "none", "any", "no_preference":
		*p = AgeAny
		return nil
	case "lower", "lower_or_equal", "younger":
		*p = AgeLowerOrEqual
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < -1 || v > 1 {
		return fmt.Errorf("age preference %q: %w", text, ErrBadEnum)
	}
	*p = AgePreference(v)

	return nil
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (p *AgePreference) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		*p = AgeAny
		return nil
	}

	return p.UnmarshalText([]byte(s))
}

// Person is a single member of the population.
//
// Preferences is ordered most-preferred first, holds no duplicates and never
// contains the person's own ID. Embedding is optional; when present every
// person of a population must use the same dimension.
type Person struct {
	ID            ID            `json:"id" yaml:"id" validate:"required"`
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Gender        Gender        `json:"gender" yaml:"gender" validate:"oneof=M W"`
	Orientation   Orientation   `json:"orientation" yaml:"orientation" validate:"oneof=straight gay lesbian bi"`
	Age           int           `json:"age" yaml:"age" validate:"gte=0,lte=130"`
	AgePreference AgePreference `json:"age_preference" yaml:"age_preference" validate:"gte=-1,lte=1"`
	AcceptsBi     bool          `json:"accepts_bi" yaml:"accepts_bi"`
	Preferences   []ID          `json:"preferences,omitempty" yaml:"preferences,omitempty" validate:"dive,required"`
	Embedding     []float32     `json:"embedding,omitempty" yaml:"embedding,omitempty"`
}

// String renders "ID(G,orientation)" for logs and test failures.
func (p *Person) String() string {
	if p == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s(%s,%s)", p.ID, p.Gender, p.Orientation)
}

// Minor reports whether the person is below the age of majority (18).
func (p *Person) Minor() bool { return p.Age < 18 }

// Category labels used by per-category statistics.
const (
	CategoryStraightMen   = "straight_men"
	CategoryStraightWomen = "straight_women"
	CategoryGayMen        = "gay_men"
	CategoryLesbianWomen  = "lesbian_women"
	CategoryBiMen         = "bi_men"
	CategoryBiWomen       = "bi_women"
	CategoryOther         = "other"
)

// Categories lists the category labels in reporting order.
var Categories = []string{
	CategoryStraightMen, CategoryStraightWomen,
	CategoryGayMen, CategoryLesbianWomen,
	CategoryBiMen, CategoryBiWomen,
}

// Category returns the statistics label of p.
func Category(p *Person) string {
	switch p.Orientation {
	case Straight:
		if p.Gender == Male {
			return CategoryStraightMen
		}
		return CategoryStraightWomen
	case Gay:
		return CategoryGayMen
	case Lesbian:
		return CategoryLesbianWomen
	case Bi:
		if p.Gender == Male {
			return CategoryBiMen
		}
		return CategoryBiWomen
	}

	return CategoryOther
}

// PairKey is the canonical key of an unordered pair: Lo < Hi lexicographically.
type PairKey struct {
	Lo, Hi ID
}

// MakePairKey orders a and b into a canonical key.
func MakePairKey(a, b ID) PairKey {
	if b < a {
		a, b = b, a
	}

	return PairKey{Lo: a, Hi: b}
}

// String renders "lo|hi".
func (k PairKey) String() string { return string(k.Lo) + "|" + string(k.Hi) }

// PairSet is a set of unordered pairs.
type PairSet map[PairKey]struct{}

// Add inserts the pair {a, b}.
func (s PairSet) Add(a, b ID) { s[MakePairKey(a, b)] = struct{}{} }

// Has reports whether {a, b} is in the set. A nil set is empty.
func (s PairSet) Has(a, b ID) bool {
	if s == nil {
		return false
	}
	_, ok := s[MakePairKey(a, b)]

	return ok
}

// Match is a realised pair and the cost (or score) used to select it.
// A Match is a value: stages produce new slices and never mutate old ones.
type Match struct {
	A    ID      `json:"a" yaml:"a" msgpack:"a"`
	B    ID      `json:"b" yaml:"b" msgpack:"b"`
	Cost float64 `json:"cost" yaml:"cost" msgpack:"cost"`
}

// Key returns the canonical pair key of m.
func (m Match) Key() PairKey { return MakePairKey(m.A, m.B) }

// Involves reports whether id is one of the endpoints.
func (m Match) Involves(id ID) bool { return m.A == id || m.B == id }

// Other returns the partner of id within m (empty if id is not an endpoint).
func (m Match) Other(id ID) ID {
	switch id {
	case m.A:
		return m.B
	case m.B:
		return m.A
	}

	return ""
}

// TotalCost sums the cost of all matches.
func TotalCost(ms []Match) float64 {
	var total float64
	for _, m := range ms {
		total += m.Cost
	}

	return total
}

// SortMatches orders ms by (A, B).
func SortMatches(ms []Match) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].A != ms[j].A {
			return ms[i].A < ms[j].A
		}
		return ms[i].B < ms[j].B
	})
}

// Partners builds the id → partner map of a matching.
func Partners(ms []Match) map[ID]ID {
	out := make(map[ID]ID, 2*len(ms))
	for _, m := range ms {
		out[m.A] = m.B
		out[m.B] = m.A
	}

	return out
}
