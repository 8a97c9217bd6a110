package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// ProfileStore implements storage.ProfileStore for BadgerDB.
type ProfileStore struct {
	backend *Backend
}

var _ storage.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(backend *Backend) (*ProfileStore, error) {
	return &ProfileStore{backend: backend}, nil
}

// Close is a no-op; the profile store holds no resources beyond the backend.
func (s *ProfileStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (s *ProfileStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// Upsert writes a profile record keyed by its ID.
func (s *ProfileStore) Upsert(ctx context.Context, record *core.ProfileRecord) (*core.ProfileRecord, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProfileKey(record.Id)

		old, err := s.readRecord(tx, key)
		if err != nil {
			return err
		}

		// Timestamps persist at microsecond precision, so truncate before
		// storing to keep the returned record equal to a later read.
		now := time.Now().UTC().Truncate(time.Microsecond)
		if old == nil {
			record.InsertedAt = now
		} else {
			record.InsertedAt = old.InsertedAt
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalProfileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return record, err
}

// Get retrieves a profile record by ID.
func (s *ProfileStore) Get(ctx context.Context, id core.ID) (*core.ProfileRecord, error) {
	var result *core.ProfileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readRecord(tx, makeProfileKey(id))
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

// Delete removes profile records by their IDs.
func (s *ProfileStore) Delete(ctx context.Context, ids ...core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProfileKey(id)

			record, err := s.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// All iterates every stored profile.
func (s *ProfileStore) All(ctx context.Context, fn func(record *core.ProfileRecord) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(profilePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.ProfileRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalProfileRecord(val)
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

// readRecord reads a profile record from the transaction.
func (s *ProfileStore) readRecord(tx *badger.Txn, key []byte) (*core.ProfileRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ProfileRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalProfileRecord(val)
		return unmarshalErr
	})
	return record, err
}
