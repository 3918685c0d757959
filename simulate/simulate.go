// SPDX-License-Identifier: MIT
//
// Package simulate generates synthetic populations for experiments and
// tests.
//
// Generate creates the requested number of persons per category, then gives
// each a preference list: every eligible partner (per eligibility.Candidates
// with default options) in a random order. The output is fully determined by
// the seed.
//
// ID scheme: M<i> straight men, W<i> straight women, G<i> gay men,
// L<i> lesbian women, BM<i> bi men, BW<i> bi women.
package simulate

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/pairing/eligibility"
	"github.com/katalvlaran/pairing/person"
)

// ErrInvalidMix wraps every Mix validation failure.
var ErrInvalidMix = errors.New("simulate: invalid mix")

var validate = validator.New()

// Mix describes the population composition.
type Mix struct {
	StraightMen   int `yaml:"straight_men" validate:"gte=0"`
	StraightWomen int `yaml:"straight_women" validate:"gte=0"`
	GayMen        int `yaml:"gay_men" validate:"gte=0"`
	LesbianWomen  int `yaml:"lesbian_women" validate:"gte=0"`
	BiMen         int `yaml:"bi_men" validate:"gte=0"`
	BiWomen       int `yaml:"bi_women" validate:"gte=0"`

	// AcceptsBiProb is the chance that a straight person accepts bi partners.
	AcceptsBiProb float64 `yaml:"accepts_bi_prob" validate:"gte=0,lte=1"`

	// MinAge and MaxAge bound the uniformly drawn ages (inclusive).
	MinAge int `yaml:"min_age" validate:"gte=0"`
	MaxAge int `yaml:"max_age" validate:"gtefield=MinAge"`

	// EmbeddingDim > 0 attaches a random unit-range vector to every person.
	EmbeddingDim int `yaml:"embedding_dim" validate:"gte=0"`
}

// DefaultMix returns the reference experiment mix: 90 straight men,
// 78 straight women, 4 gay men, 7 lesbian women, 6 bi men and 15 bi women,
// with 75% of straight persons accepting bi partners.
func DefaultMix() Mix {
	return Mix{
		StraightMen:   90,
		StraightWomen: 78,
		GayMen:        4,
		LesbianWomen:  7,
		BiMen:         6,
		BiWomen:       15,
		AcceptsBiProb: 0.75,
		MinAge:        18,
		MaxAge:        60,
	}
}

// Total returns the population size described by s.
func (s Mix) Total() int {
	return s.StraightMen + s.StraightWomen + s.GayMen + s.LesbianWomen + s.BiMen + s.BiWomen
}

// Validate checks the field constraints of s.
func (s Mix) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidMix, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" "+fe.Tag())
	}

	return fmt.Errorf("%w: %s", ErrInvalidMix, strings.Join(msgs, ", "))
}

// Generate builds a population from s using a generator seeded with seed.
// Complexity: O(n²).
func Generate(s Mix, seed int64) *person.Population {
	rng := rand.New(rand.NewSource(seed))
	people := make([]*person.Person, 0, s.Total())

	add := func(prefix string, n int, g person.Gender, o person.Orientation) {
		for i := 0; i < n; i++ {
			p := &person.Person{
				ID:          person.ID(fmt.Sprintf("%s%d", prefix, i)),
				Gender:      g,
				Orientation: o,
				Age:         age(rng, s),
				AcceptsBi:   true,
			}
			if o == person.Straight {
				p.AcceptsBi = rng.Float64() < s.AcceptsBiProb
			}
			if s.EmbeddingDim > 0 {
				p.Embedding = make([]float32, s.EmbeddingDim)
				for k := range p.Embedding {
					p.Embedding[k] = rng.Float32()*2 - 1
				}
			}
			people = append(people, p)
		}
	}
	add("M", s.StraightMen, person.Male, person.Straight)
	add("W", s.StraightWomen, person.Female, person.Straight)
	add("G", s.GayMen, person.Male, person.Gay)
	add("L", s.LesbianWomen, person.Female, person.Lesbian)
	add("BM", s.BiMen, person.Male, person.Bi)
	add("BW", s.BiWomen, person.Female, person.Bi)

	pop := person.MustPopulation(people...)
	opts := eligibility.DefaultOptions()
	for _, p := range people {
		for _, q := range eligibility.Candidates(p, pop, opts) {
			p.Preferences = append(p.Preferences, q.ID)
		}
		rng.Shuffle(len(p.Preferences), func(i, j int) {
			p.Preferences[i], p.Preferences[j] = p.Preferences[j], p.Preferences[i]
		})
	}

	return person.MustPopulation(people...)
}

func age(rng *rand.Rand, s Mix) int {
	if s.MaxAge <= s.MinAge {
		return s.MinAge
	}

	return s.MinAge + rng.Intn(s.MaxAge-s.MinAge+1)
}
