// SPDX-License-Identifier: MIT

// Package analysis measures the quality of a produced matching.
//
// Stability counts blocking pairs: two people, not matched to each other,
// who each prefer the other to their current partner (a single person
// prefers anyone they list). The report gives the raw count, its share of
// all n(n−1)/2 possible pairs, and how many distinct individuals take part
// in at least one blocking pair. Deferred acceptance yields zero; the
// optimizers trade some stability for lower total cost.
//
// Satisfaction collects the rank each matched person achieved (1 = first
// choice) and summarises it: mean, median, mode, and the counts at or above
// the top-K and bottom-K thresholds. SatisfactionByCategory splits the same
// summary by person.Category.
//
// Both analyses are pure functions of the population and the matches.
package analysis
