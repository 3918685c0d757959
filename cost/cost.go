// SPDX-License-Identifier: MIT
//
// Package cost provides the interchangeable cost strategies used to compare
// candidate partners. Lower is better; every cost is finite and non-negative.
//
// Strategies:
//
//	RankSum     cost(a,b) = rank(b in a.prefs) + rank(a in b.prefs), 1-based.
//	            An absent entry costs the population size (soft exclusion).
//	Similarity  cost(a,b) = 1 − cosine(a.Embedding, b.Embedding).
//	            Zero-norm, missing or mismatched vectors give similarity 0,
//	            i.e. cost 1, never a division by zero.
//
// DefaultLargeCost is the "must not be matched" sentinel used for padding and
// for non-mutual cells of assignment matrices.
package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/pairing/person"
)

// DefaultLargeCost is the default "do not match" sentinel (10^6).
const DefaultLargeCost = 1e6

// DefaultScale is the default quantization factor from float cost to int64 weight.
const DefaultScale = 1e6

// MaxScale bounds the quantization factor accepted by configuration.
const MaxScale = 1e12

// MaxWeight bounds quantized weights. The blossom solver shifts
// weights by the maximum and keeps doubled duals, so both must fit in int64.
const MaxWeight = math.MaxInt64 / 4

// Sentinel errors.
var (
	// ErrUnknownModel is returned by ByName for an unrecognised model name.
	ErrUnknownModel = errors.New("cost: unknown model")

	// ErrWeightOverflow is returned by Quantize when c·scale is not a
	// finite value strictly inside (-MaxWeight, MaxWeight).
	ErrWeightOverflow = errors.New("cost: quantized weight out of range")
)

// Model names accepted by ByName.
const (
	NameRankSum    = "rank_sum"
	NameSimilarity = "similarity"
)

// Model computes the symmetric cost of an (eligible) pair.
type Model interface {
	// Cost returns a finite, non-negative cost; lower means better.
	Cost(a, b *person.Person) float64
	// Name identifies the strategy (for logs and stored records).
	Name() string
}

// Scorer computes the one-sided cost of candidate b as seen by a.
// It is the quantity preference lists are sorted by.
type Scorer interface {
	Score(a, b *person.Person) float64
}

// RankSum is the rank-based strategy. Pop supplies the rank index.
type RankSum struct {
	Pop *person.Population
}

// NewRankSum binds a RankSum model to pop.
func NewRankSum(pop *person.Population) RankSum { return RankSum{Pop: pop} }

// Name implements Model.
func (RankSum) Name() string { return NameRankSum }

// Cost implements Model.
// Complexity: O(1).
func (m RankSum) Cost(a, b *person.Person) float64 {
	return float64(Rank(m.Pop, a.ID, b.ID) + Rank(m.Pop, b.ID, a.ID))
}

// Rank returns the 1-based rank of b in a's list, or the population size when
// b is absent.
func Rank(pop *person.Population, a, b person.ID) int {
	if r := pop.Rank(a, b); r > 0 {
		return r
	}

	return pop.Len()
}

// Similarity is the embedding-based strategy.
type Similarity struct{}

// Name implements Model.
func (Similarity) Name() string { return NameSimilarity }

// Cost implements Model. The result lies in [0, 2].
// Complexity: O(d) for embedding dimension d.
func (Similarity) Cost(a, b *person.Person) float64 {
	c := 1 - Cosine(a.Embedding, b.Embedding)
	switch {
	case c < 0:
		return 0
	case c > 2:
		return 2
	}

	return c
}

// Score implements Scorer: the one-sided view equals the symmetric cost.
func (s Similarity) Score(a, b *person.Person) float64 { return s.Cost(a, b) }

// Cosine returns the cosine similarity of x and y. It returns 0 when either
// vector is empty or zero-norm, or when the dimensions differ.
func Cosine(x, y []float32) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	var dot, nx, ny float64
	for i := range x {
		xi, yi := float64(x[i]), float64(y[i])
		dot += xi * yi
		nx += xi * xi
		ny += yi * yi
	}
	if nx == 0 || ny == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(nx) * math.Sqrt(ny))
	if math.IsNaN(sim) {
		return 0
	}

	return sim
}

// ByName returns the model registered under name. RankSum needs pop.
func ByName(name string, pop *person.Population) (Model, error) {
	switch name {
	case "", NameRankSum:
		return NewRankSum(pop), nil
	case NameSimilarity:
		return Similarity{}, nil
	}

	return nil, fmt.Errorf("%q: %w", name, ErrUnknownModel)
}

// IsBlocked reports whether c is at or above the large-cost sentinel.
func IsBlocked(c, large float64) bool { return c >= large }

// Quantize maps a float cost onto an integer weight: round(c·scale).
// A non-positive scale falls back to DefaultScale.
func Quantize(c, scale float64) (int64, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	v := math.Round(c * scale)
	if math.IsNaN(v) || math.Abs(v) >= MaxWeight {
		return 0, fmt.Errorf("%g × %g: %w", c, scale, ErrWeightOverflow)
	}

	return int64(v), nil
}
