package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// OpportunityStore implements storage.OpportunityStore for BadgerDB.
type OpportunityStore struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates a new OpportunityStore.
func NewOpportunityStore(backend *Backend) (*OpportunityStore, error) {
	seq, err := backend.GetSequence(opportunitySeq)
	if err != nil {
		return nil, err
	}

	return &OpportunityStore{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the insertion sequence.
func (s *OpportunityStore) Close() error {
	return s.seq.Release()
}

// WithTransaction delegates to the backend.
func (s *OpportunityStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// Upsert writes an opportunity record. New records are assigned a monotonic
// insertion sequence; updates keep the original Seq and InsertedAt so
// re-ingesting a record never reorders tie-breaks.
func (s *OpportunityStore) Upsert(ctx context.Context, record *core.OpportunityRecord) (*core.OpportunityRecord, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOpportunityKey(record.Id)

		old, err := s.readRecord(tx, key)
		if err != nil {
			return err
		}

		// Timestamps persist at microsecond precision, so truncate before
		// storing to keep the returned record equal to a later read.
		now := time.Now().UTC().Truncate(time.Microsecond)
		if old == nil {
			nextSeq, err := s.seq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextSeq == 0 {
				nextSeq, err = s.seq.Next()
				if err != nil {
					return err
				}
			}
			record.Seq = nextSeq
			record.InsertedAt = now
		} else {
			record.Seq = old.Seq
			record.InsertedAt = old.InsertedAt
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalOpportunityRecord(record)); err != nil {
			return err
		}

		// Maintain the fingerprint lookup index
		if record.Fingerprint != 0 {
			fpKey := makeOpportunityFpKey(record.Fingerprint)
			if err := tx.Set(fpKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return record, err
}

// Get retrieves an opportunity record by ID.
func (s *OpportunityStore) Get(ctx context.Context, id core.ID) (*core.OpportunityRecord, error) {
	var result *core.OpportunityRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readRecord(tx, makeOpportunityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetByFingerprint retrieves an opportunity record by its dedup fingerprint.
func (s *OpportunityStore) GetByFingerprint(ctx context.Context, fp core.ID) (*core.OpportunityRecord, error) {
	var result *core.OpportunityRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeOpportunityFpKey(fp))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = s.readRecord(tx, makeOpportunityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Delete removes opportunity records by their IDs.
func (s *OpportunityStore) Delete(ctx context.Context, ids ...core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeOpportunityKey(id)

			record, err := s.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if record.Fingerprint != 0 {
				if err := tx.Delete(makeOpportunityFpKey(record.Fingerprint)); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateStatus transitions a record's lifecycle status.
func (s *OpportunityStore) UpdateStatus(ctx context.Context, id core.ID, status core.OpportunityStatus) error {
	if err := core.ValidateStatus(status); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOpportunityKey(id)
		record, err := s.readRecord(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		record.Status = status
		record.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := tx.Set(key, storage.MarshalOpportunityRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// QueryNearest scans all opportunity records and returns up to k nearest
// to the query vector by cosine distance, ascending. Ties are broken by
// insertion order so results are stable across identical corpora.
func (s *OpportunityStore) QueryNearest(ctx context.Context, vector []float32, k int, activeOnly bool) ([]core.VectorMatch, error) {
	if k < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []core.VectorMatch
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(opportunityPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.OpportunityRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalOpportunityRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}

			// Skip records without embeddings
			if len(record.Vector) == 0 {
				continue
			}
			if activeOnly && record.Status != core.StatusActive {
				continue
			}

			matches = append(matches, core.VectorMatch{
				Id:       record.Id,
				Distance: cosineDistance(vector, record.Vector),
				Seq:      record.Seq,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.VectorMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		if a.Seq < b.Seq {
			return -1
		}
		if a.Seq > b.Seq {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// All iterates every stored opportunity record.
func (s *OpportunityStore) All(ctx context.Context, fn func(record *core.OpportunityRecord) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(opportunityPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.OpportunityRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalOpportunityRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of stored records, optionally filtered by status.
func (s *OpportunityStore) Count(ctx context.Context, status core.OpportunityStatus) (int, error) {
	count := 0
	err := s.All(ctx, func(record *core.OpportunityRecord) error {
		if status == 0 || record.Status == status {
			count++
		}
		return nil
	})
	return count, err
}

// readRecord reads an opportunity record from the transaction.
func (s *OpportunityStore) readRecord(tx *badger.Txn, key []byte) (*core.OpportunityRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.OpportunityRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalOpportunityRecord(val)
		return unmarshalErr
	})
	return record, err
}
