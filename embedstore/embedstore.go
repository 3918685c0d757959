// SPDX-License-Identifier: MIT
//
// Package embedstore is the embedding boundary of the pipeline: it keeps
// person vectors in a chromem-go collection and attaches them to a
// population before a run.
//
// Vectors are supplied by the caller; the store never computes embeddings.
// chromem-go keeps vectors unit-normalized, so Get returns the normalized
// form. Cosine similarity, the only thing the cost model reads, is unchanged.
// Empty or zero-norm vectors are rejected by Put and skipped by Load, which
// leaves such persons at similarity 0. The length of the first stored vector
// is recorded next to the collection and enforced by Put, also after a
// persistent store is reopened.
package embedstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/katalvlaran/pairing/person"
)

// Sentinel errors.
var (
	// ErrNotFound is returned by Get for an unknown person.
	ErrNotFound = errors.New("embedstore: embedding not found")

	// ErrZeroVector is returned by Put for an empty or zero-norm vector.
	ErrZeroVector = errors.New("embedstore: empty or zero-norm vector")

	// ErrDimension is returned by Put when a vector's length differs from the
	// vectors already stored.
	ErrDimension = errors.New("embedstore: dimension mismatch")
)

const (
	// collectionName is the collection holding person vectors.
	collectionName = "people"

	// metaCollection holds one document whose content is the vector
	// dimension of collectionName, so a reopened store keeps enforcing it.
	metaCollection = "people_meta"
	dimensionDocID = "dimension"
)

// Options configures a Store.
type Options struct {
	// Dir persists the collection under this directory. Empty keeps it in memory.
	Dir string

	// Logger receives store logs. Nil means zap.NewNop().
	Logger *zap.Logger
}

// Store holds person embeddings.
type Store struct {
	col    *chromem.Collection
	meta   *chromem.Collection
	logger *zap.Logger
	dim    int
}

// Neighbor is one result of Nearest.
type Neighbor struct {
	ID         person.ID
	Similarity float64
}

// New opens a Store.
func New(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	db := chromem.NewDB()
	if opts.Dir != "" {
		var err error
		if db, err = chromem.NewPersistentDB(opts.Dir, false); err != nil {
			return nil, fmt.Errorf("embedstore: open %s: %w", opts.Dir, err)
		}
	}
	// No embedding func: every document carries its own vector.
	col, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedstore: collection: %w", err)
	}
	meta, err := db.GetOrCreateCollection(metaCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedstore: collection: %w", err)
	}
	s := &Store{col: col, meta: meta, logger: logger}
	if doc, err := meta.GetByID(context.Background(), dimensionDocID); err == nil {
		if s.dim, err = strconv.Atoi(doc.Content); err != nil {
			return nil, fmt.Errorf("embedstore: stored dimension %q: %w", doc.Content, err)
		}
		logger.Debug("embedding store reopened", zap.Int("dimension", s.dim), zap.Int("count", col.Count()))
	}

	return s, nil
}

// Dimension returns the vector length enforced by Put, 0 before the first vector.
func (s *Store) Dimension() int { return s.dim }

// Put stores vec for id, replacing any earlier vector.
func (s *Store) Put(ctx context.Context, id person.ID, vec []float32) error {
	if zeroNorm(vec) {
		return fmt.Errorf("%s: %w", id, ErrZeroVector)
	}
	if s.dim > 0 && len(vec) != s.dim {
		return fmt.Errorf("%s: got %d, want %d: %w", id, len(vec), s.dim, ErrDimension)
	}
	doc := chromem.Document{
		ID:        string(id),
		Content:   string(id),
		Embedding: append([]float32(nil), vec...),
	}
	if s.dim == 0 {
		dim := chromem.Document{
			ID:        dimensionDocID,
			Content:   strconv.Itoa(len(vec)),
			Embedding: []float32{1},
		}
		if err := s.meta.AddDocument(ctx, dim); err != nil {
			return fmt.Errorf("embedstore: record dimension: %w", err)
		}
		s.dim = len(vec)
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("embedstore: add %s: %w", id, err)
	}

	return nil
}

// Get returns the stored (normalized) vector of id.
func (s *Store) Get(ctx context.Context, id person.ID) ([]float32, error) {
	doc, err := s.col.GetByID(ctx, string(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	return doc.Embedding, nil
}

// Count returns the number of stored vectors.
func (s *Store) Count() int { return s.col.Count() }

// Load stores the embedding of every person of pop that has a usable one and
// returns how many were stored.
func (s *Store) Load(ctx context.Context, pop *person.Population) (int, error) {
	var n int
	for _, p := range pop.People() {
		if len(p.Embedding) == 0 {
			continue
		}
		err := s.Put(ctx, p.ID, p.Embedding)
		if errors.Is(err, ErrZeroVector) {
			s.logger.Warn("skipping zero-norm embedding", zap.String("id", string(p.ID)))
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	s.logger.Debug("embeddings loaded", zap.Int("count", n), zap.Int("population", pop.Len()))

	return n, nil
}

// Attach copies stored vectors onto every person of pop without an
// embedding and returns how many were attached. Persons with no stored
// vector are left as they are.
func (s *Store) Attach(ctx context.Context, pop *person.Population) (int, error) {
	var n, missing int
	for _, p := range pop.People() {
		if len(p.Embedding) > 0 {
			continue
		}
		vec, err := s.Get(ctx, p.ID)
		if errors.Is(err, ErrNotFound) {
			missing++
			continue
		}
		if err != nil {
			return n, err
		}
		p.Embedding = vec
		n++
	}
	if missing > 0 {
		s.logger.Info("persons without embedding", zap.Int("missing", missing))
	}

	return n, nil
}

// Nearest returns up to n stored persons most similar to vec, most similar
// first.
func (s *Store) Nearest(ctx context.Context, vec []float32, n int) ([]Neighbor, error) {
	if zeroNorm(vec) {
		return nil, ErrZeroVector
	}
	if c := s.col.Count(); n > c {
		n = c
	}
	if n <= 0 {
		return nil, nil
	}
	res, err := s.col.QueryEmbedding(ctx, vec, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedstore: query: %w", err)
	}
	out := make([]Neighbor, 0, len(res))
	for _, r := range res {
		out = append(out, Neighbor{ID: person.ID(r.ID), Similarity: float64(r.Similarity)})
	}

	return out, nil
}

func zeroNorm(vec []float32) bool {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	return len(vec) == 0 || sum == 0 || math.IsNaN(sum)
}
