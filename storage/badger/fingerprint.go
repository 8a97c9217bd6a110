package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// FingerprintIndex implements storage.FingerprintIndex for BadgerDB.
// The index is append-only: entries are never removed, so an opportunity
// that expires still blocks re-ingestion of the same record.
type FingerprintIndex struct {
	backend *Backend
}

var _ storage.FingerprintIndex = (*FingerprintIndex)(nil)

// NewFingerprintIndex creates a new FingerprintIndex.
func NewFingerprintIndex(backend *Backend) (*FingerprintIndex, error) {
	return &FingerprintIndex{backend: backend}, nil
}

// Close is a no-op; the index holds no resources beyond the backend.
func (s *FingerprintIndex) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (s *FingerprintIndex) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// Add appends a fingerprint. Adding an existing fingerprint is a no-op.
func (s *FingerprintIndex) Add(ctx context.Context, fp core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFingerprintKey(fp), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Contains reports whether the fingerprint has ever been ingested.
func (s *FingerprintIndex) Contains(ctx context.Context, fp core.ID) (bool, error) {
	found := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeFingerprintKey(fp))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// Count returns the number of indexed fingerprints.
func (s *FingerprintIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fingerprintPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
