// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/katalvlaran/pairing/person"
)

// Side is the exported identity of one partner.
type Side struct {
	ID          person.ID          `json:"id"`
	Name        string             `json:"name,omitempty"`
	Gender      person.Gender      `json:"gender"`
	Orientation person.Orientation `json:"orientation"`
	Age         int                `json:"age"`
}

// ExportedPair is one entry of the JSON export.
type ExportedPair struct {
	A     Side    `json:"a"`
	B     Side    `json:"b"`
	Score float64 `json:"score"`
}

// Export is the document written by ExportJSON.
type Export struct {
	BatchID   string         `json:"batch_id,omitempty"`
	Algorithm string         `json:"algorithm,omitempty"`
	Pairs     []ExportedPair `json:"pairs"`
}

// ExportJSON writes matches as an indented JSON document with both sides'
// identifying info. Every ID must exist in pop.
func ExportJSON(w io.Writer, pop *person.Population, batchID, algorithm string, matches []person.Match) error {
	doc := Export{BatchID: batchID, Algorithm: algorithm, Pairs: make([]ExportedPair, 0, len(matches))}
	for _, m := range matches {
		a, err := pop.Lookup(m.A)
		if err != nil {
			return fmt.Errorf("store: export: %w", err)
		}
		b, err := pop.Lookup(m.B)
		if err != nil {
			return fmt.Errorf("store: export: %w", err)
		}
		doc.Pairs = append(doc.Pairs, ExportedPair{A: side(a), B: side(b), Score: m.Cost})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

func side(p *person.Person) Side {
	return Side{ID: p.ID, Name: p.Name, Gender: p.Gender, Orientation: p.Orientation, Age: p.Age}
}
