// SPDX-License-Identifier: MIT
//
// Package store persists final matches and serves them back as match history.
//
// Two implementations share the Store interface: Badger (BadgerDB v4, on disk
// or in memory) and Memory (a plain map, for tests and one-shot runs). Both
// satisfy pipeline.Sink through SaveMatches.
//
// Every stored pair becomes a Record stamped with the run's batch ID, the
// algorithm that produced it and the status "pending". History returns the
// set of all stored pairs, ready to be passed as an exclusion set to the
// next run.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrBadStatus is returned for an unknown Status value.
	ErrBadStatus = errors.New("store: unknown status")

	// ErrEmptyBatch is returned when SaveMatches gets an empty batch ID.
	ErrEmptyBatch = errors.New("store: empty batch id")
)

// Status is the lifecycle state of a stored match.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}

	return false
}

// Record is one stored match.
type Record struct {
	A         person.ID `msgpack:"a" json:"a"`
	B         person.ID `msgpack:"b" json:"b"`
	Cost      float64   `msgpack:"cost" json:"cost"`
	Status    Status    `msgpack:"status" json:"status"`
	Algorithm string    `msgpack:"algorithm" json:"algorithm"`
	BatchID   string    `msgpack:"batch_id" json:"batch_id"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at"`
}

// Key returns the canonical pair key of r.
func (r Record) Key() person.PairKey { return person.MakePairKey(r.A, r.B) }

// Store is the match-history interface.
type Store interface {
	// SaveMatches stores every match as a pending Record of batchID.
	SaveMatches(ctx context.Context, batchID, algorithm string, matches []person.Match) error

	// Records returns all records ordered by (CreatedAt, BatchID, A, B).
	Records(ctx context.Context) ([]Record, error)

	// Batch returns the records of one batch ordered by (A, B).
	Batch(ctx context.Context, batchID string) ([]Record, error)

	// SetStatus updates the status of one stored pair.
	SetStatus(ctx context.Context, batchID string, a, b person.ID, s Status) error

	// History returns every stored pair regardless of status.
	History(ctx context.Context) (person.PairSet, error)

	// Close releases any resources held by the store.
	Close() error
}

// newRecords converts matches into pending records.
func newRecords(batchID, algorithm string, matches []person.Match, now time.Time) []Record {
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		k := m.Key()
		out = append(out, Record{
			A:         k.Lo,
			B:         k.Hi,
			Cost:      m.Cost,
			Status:    StatusPending,
			Algorithm: algorithm,
			BatchID:   batchID,
			CreatedAt: now,
		})
	}

	return out
}

// recordKey is the storage key of a record: batch ID then canonical pair.
func recordKey(batchID string, k person.PairKey) string {
	return batchID + sep + k.String()
}

const sep = ":"

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		if rs[i].BatchID != rs[j].BatchID {
			return rs[i].BatchID < rs[j].BatchID
		}
		if rs[i].A != rs[j].A {
			return rs[i].A < rs[j].A
		}
		return rs[i].B < rs[j].B
	})
}

func historyOf(rs []Record) person.PairSet {
	s := make(person.PairSet, len(rs))
	for _, r := range rs {
		s.Add(r.A, r.B)
	}

	return s
}
