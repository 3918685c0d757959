// SPDX-License-Identifier: MIT
//
// Package pairing builds one-to-one matchings of a population in which every
// person has a gender, an orientation and a ranked list of acceptable
// partners.
//
// 🚀 What lives here?
//
//	person/       - Person, Population, PairKey, Match and population files
//	eligibility/  - who may be paired with whom (orientation, bi, age rules)
//	cost/         - pair cost models: rank sum and embedding similarity
//	preference/   - normalise given lists or build them from a cost model
//	greedy/       - cheapest-first baseline over all mutual pairs
//	pools/        - heterosexual, gay and lesbian pool decomposition
//	matrix/       - dense cost matrices with bounds-checked access
//	assignment/   - Hungarian (Kuhn–Munkres) assignment
//	core/         - compatibility graph of candidate pairs
//	blossom/      - Edmonds' blossom max-weight and min-weight perfect matching
//	optimize/     - cost-optimal matching of a pool (bipartite or general)
//	stable/       - deferred acceptance and the hybrid stable solver
//	analysis/     - blocking pairs and rank satisfaction statistics
//	pipeline/     - the staged run: lists, greedy, pools, solve, merge, analysis
//	store/        - match records in memory or in badger, JSON export
//	embedstore/   - person embeddings kept in a chromem-go collection
//	simulate/     - seeded synthetic populations
//	config/       - YAML + PAIRING_* environment configuration
//	cmd/pairing/  - the command line
//
// Quick example:
//
//	pop, _ := person.ReadFile("people.yaml")
//	res, err := pipeline.Run(ctx, pop, pipeline.WithAlgorithm(pipeline.AlgorithmStable))
//	if err != nil { … }
//	fmt.Println(len(res.Matches), res.Stability.BlockingPairs)
package pairing
