// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/katalvlaran/pairing/person"
)

// ErrNoDir is returned when an on-disk Badger store has no directory.
var ErrNoDir = errors.New("store: BadgerOptions.Dir is required for on-disk mode")

// keyPrefix namespaces match records inside the database.
const keyPrefix = "match"

// Badger is a Store backed by BadgerDB v4. Records are msgpack-encoded under
// the key "match:<batch>:<lo>|<hi>".
type Badger struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
}

// BadgerOptions configures the Badger store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives store and badger engine logs. Nil means zap.NewNop().
	Logger *zap.Logger
}

// OpenBadger opens (or creates) a Badger store.
func OpenBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, ErrNoDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger.Named("badger").Sugar()})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}

	return &Badger{db: db, logger: logger, now: time.Now}, nil
}

// SaveMatches implements Store and pipeline.Sink. All records of the batch
// are written in one write batch.
func (b *Badger) SaveMatches(_ context.Context, batchID, algorithm string, matches []person.Match) error {
	if batchID == "" {
		return ErrEmptyBatch
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, r := range newRecords(batchID, algorithm, matches, b.now().UTC()) {
		val, err := msgpack.Marshal(r)
		if err != nil {
			return fmt.Errorf("store: encode %s: %w", r.Key(), err)
		}
		if err := wb.Set(dbKey(batchID, r.Key()), val); err != nil {
			return fmt.Errorf("store: write %s: %w", r.Key(), err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}
	b.logger.Info("matches stored",
		zap.String("batch_id", batchID),
		zap.String("algorithm", algorithm),
		zap.Int("count", len(matches)),
	)

	return nil
}

// Records implements Store.
func (b *Badger) Records(_ context.Context) ([]Record, error) {
	out, err := b.scan([]byte(keyPrefix + sep))
	if err != nil {
		return nil, err
	}
	sortRecords(out)

	return out, nil
}

// Batch implements Store.
func (b *Badger) Batch(_ context.Context, batchID string) ([]Record, error) {
	out, err := b.scan([]byte(keyPrefix + sep + batchID + sep))
	if err != nil {
		return nil, err
	}
	sortRecords(out)

	return out, nil
}

// SetStatus implements Store.
func (b *Badger) SetStatus(_ context.Context, batchID string, x, y person.ID, s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%q: %w", s, ErrBadStatus)
	}
	key := dbKey(batchID, person.MakePairKey(x, y))

	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}
		var r Record
		err = item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &r)
		})
		if err != nil {
			return fmt.Errorf("store: decode %s: %w", key, err)
		}
		r.Status = s
		val, err := msgpack.Marshal(r)
		if err != nil {
			return err
		}

		return txn.Set(key, val)
	})
}

// History implements Store.
func (b *Badger) History(ctx context.Context) (person.PairSet, error) {
	all, err := b.Records(ctx)
	if err != nil {
		return nil, err
	}

	return historyOf(all), nil
}

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}

// scan decodes every record under prefix.
func (b *Badger) scan(prefix []byte) ([]Record, error) {
	var out []Record
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var r Record
			err := item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("store: decode %s: %w", item.Key(), err)
			}
			r.CreatedAt = r.CreatedAt.UTC()
			out = append(out, r)
		}
		return nil
	})

	return out, err
}

func dbKey(batchID string, k person.PairKey) []byte {
	return []byte(keyPrefix + sep + recordKey(batchID, k))
}

// badgerLogger routes badger engine logs to zap, dropping debug output.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Infof(f, v...) }
func (badgerLogger) Debugf(string, ...interface{})          {}
