// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/katalvlaran/pairing/cost"
	"github.com/katalvlaran/pairing/person"
)

// Default thresholds.
const (
	DefaultTopK    = 15
	DefaultBottomK = 30
)

// Summary describes a multiset of achieved ranks.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// Mode is the most frequent rank; when several ranks tie, the smallest
	// of them with ModeUnique false.
	Mode       int  `json:"mode"`
	ModeUnique bool `json:"mode_unique"`

	TopK           int     `json:"top_k"`
	TopKCount      int     `json:"top_k_count"`
	TopKPercent    float64 `json:"top_k_pct"`
	BottomK        int     `json:"bottom_k"`
	BottomKCount   int     `json:"bottom_k_count"`
	BottomKPercent float64 `json:"bottom_k_pct"`
}

// AchievedRanks returns, for every matched person, the 1-based rank of their
// partner in their own list. An unlisted partner scores the population size.
func AchievedRanks(pop *person.Population, matches []person.Match) (map[person.ID]int, error) {
	if pop == nil {
		return nil, ErrNilPopulation
	}
	if _, err := partners(pop, matches); err != nil {
		return nil, err
	}
	out := make(map[person.ID]int, 2*len(matches))
	for _, m := range matches {
		out[m.A] = cost.Rank(pop, m.A, m.B)
		out[m.B] = cost.Rank(pop, m.B, m.A)
	}

	return out, nil
}

// Satisfaction summarises the achieved ranks of everyone matched.
// A rank counts towards top-K when ≤ topK and towards bottom-K when ≥ bottomK.
func Satisfaction(pop *person.Population, matches []person.Match, topK, bottomK int) (Summary, error) {
	ranks, err := AchievedRanks(pop, matches)
	if err != nil {
		return Summary{}, err
	}
	all := make([]int, 0, len(ranks))
	for _, id := range pop.IDs() {
		if r, ok := ranks[id]; ok {
			all = append(all, r)
		}
	}

	return Summarize(all, topK, bottomK), nil
}

// SatisfactionByCategory is Satisfaction grouped by person.Category. Every
// label of person.Categories is present, possibly with N == 0.
func SatisfactionByCategory(pop *person.Population, matches []person.Match, topK, bottomK int) (map[string]Summary, error) {
	ranks, err := AchievedRanks(pop, matches)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]int, len(person.Categories))
	for _, p := range pop.People() {
		if r, ok := ranks[p.ID]; ok {
			c := person.Category(p)
			grouped[c] = append(grouped[c], r)
		}
	}
	out := make(map[string]Summary, len(person.Categories))
	for _, c := range person.Categories {
		out[c] = Summarize(grouped[c], topK, bottomK)
	}

	return out, nil
}

// Summarize computes a Summary of ranks. ranks is not modified.
func Summarize(ranks []int, topK, bottomK int) Summary {
	s := Summary{N: len(ranks), TopK: topK, BottomK: bottomK}
	if s.N == 0 {
		return s
	}
	sorted := append([]int(nil), ranks...)
	sort.Ints(sorted)

	var sum int
	freq := make(map[int]int, len(sorted))
	for _, r := range sorted {
		sum += r
		freq[r]++
		if r <= topK {
			s.TopKCount++
		}
		if r >= bottomK {
			s.BottomKCount++
		}
	}
	s.Mean = float64(sum) / float64(s.N)
	if s.N%2 == 1 {
		s.Median = float64(sorted[s.N/2])
	} else {
		s.Median = float64(sorted[s.N/2-1]+sorted[s.N/2]) / 2
	}

	// sorted is ascending, so the first value reaching the top frequency is
	// the smallest mode.
	best := 0
	for _, r := range sorted {
		if f := freq[r]; f > best {
			best, s.Mode = f, r
		}
	}
	s.ModeUnique = distinctWithFreq(freq, best) == 1
	s.TopKPercent = percent(s.TopKCount, s.N)
	s.BottomKPercent = percent(s.BottomKCount, s.N)

	return s
}

func distinctWithFreq(freq map[int]int, f int) int {
	var n int
	for _, c := range freq {
		if c == f {
			n++
		}
	}

	return n
}
