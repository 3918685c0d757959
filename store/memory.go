// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katalvlaran/pairing/person"
)

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record), now: time.Now}
}

// SaveMatches implements Store.
func (m *Memory) SaveMatches(_ context.Context, batchID, algorithm string, matches []person.Match) error {
	if batchID == "" {
		return ErrEmptyBatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range newRecords(batchID, algorithm, matches, m.now().UTC()) {
		m.records[recordKey(batchID, r.Key())] = r
	}

	return nil
}

// Records implements Store.
func (m *Memory) Records(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sortRecords(out)

	return out, nil
}

// Batch implements Store.
func (m *Memory) Batch(ctx context.Context, batchID string) ([]Record, error) {
	all, _ := m.Records(ctx)
	var out []Record
	for _, r := range all {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}

	return out, nil
}

// SetStatus implements Store.
func (m *Memory) SetStatus(_ context.Context, batchID string, a, b person.ID, s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%q: %w", s, ErrBadStatus)
	}
	key := recordKey(batchID, person.MakePairKey(a, b))
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	r.Status = s
	m.records[key] = r

	return nil
}

// History implements Store.
func (m *Memory) History(ctx context.Context) (person.PairSet, error) {
	all, _ := m.Records(ctx)

	return historyOf(all), nil
}

// Close implements Store. It is a no-op.
func (m *Memory) Close() error { return nil }
