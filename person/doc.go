// SPDX-License-Identifier: MIT
//
// Package person defines the data model shared by every stage of the
// matchmaking engine: the Person record, its closed enums (Gender,
// Orientation, AgePreference), the Population index, canonical pair keys
// and the immutable Match value produced by the optimizers.
//
// 🚀 What lives here?
//
//	• Person      - one individual: identity, gender, orientation, age,
//	                age preference, accepts-bi flag, ranked preferences and
//	                an optional embedding vector.
//	• Population  - an ordered, ID-indexed snapshot of persons with O(1)
//	                rank lookups (1-based position of b in a's list).
//	• PairKey     - canonical (sorted-ID) key of an unordered pair.
//	• PairSet     - set of pair keys (e.g. pairs matched in earlier rounds).
//	• Match       - a realised pair plus the cost used to select it.
//
// Matcher state (current partner, proposal cursor) is deliberately absent
// from Person: stages that need it keep it in maps they own, so a
// Population can be fed to any number of runs without a reset step.
//
// Errors:
//
//	ErrNilPerson          - a nil *Person was supplied.
//	ErrDuplicateID        - two persons share the same ID.
//	ErrUnknownID          - a lookup referenced an ID not in the population.
//	ErrInvalidPopulation  - the input contract is violated (see Validate).
package person
