package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// DocumentStore implements storage.DocumentStore for BadgerDB.
type DocumentStore struct {
	backend *Backend
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(backend *Backend) (*DocumentStore, error) {
	return &DocumentStore{backend: backend}, nil
}

// Close is a no-op; the document store holds no resources beyond the backend.
func (s *DocumentStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (s *DocumentStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// Upsert writes a document and maintains the profile ownership index.
func (s *DocumentStore) Upsert(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Id)

		old, err := s.readDocument(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			// Truncated to the microsecond precision the codec persists.
			doc.AddedAt = time.Now().UTC().Truncate(time.Microsecond)
		} else {
			doc.AddedAt = old.AddedAt
			// Ownership can change (documents are re-homed on profile rebuild)
			if old.ProfileId != doc.ProfileId && old.ProfileId != 0 {
				if err := tx.Delete(makeDocumentOwnerKey(old.ProfileId, old.Id)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}

		if doc.ProfileId != 0 {
			ownerKey := makeDocumentOwnerKey(doc.ProfileId, doc.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return doc, err
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readDocument(tx, makeDocumentKey(id))
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

// GetByProfile retrieves all documents owned by a profile via the ownership index.
func (s *DocumentStore) GetByProfile(ctx context.Context, profileId core.ID) ([]*core.Document, error) {
	var results []*core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialDocumentOwnerKey(profileId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			var docId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := s.readDocument(tx, makeDocumentKey(docId))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// Delete removes documents by their IDs, including ownership index entries.
func (s *DocumentStore) Delete(ctx context.Context, ids ...core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := s.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if doc.ProfileId != 0 {
				if err := tx.Delete(makeDocumentOwnerKey(doc.ProfileId, doc.Id)); err != nil {
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

// QueryNearest returns up to k documents nearest to the query vector by
// cosine distance, ascending. Documents without vectors are skipped. When
// profileId is non-zero, only that profile's documents are considered.
func (s *DocumentStore) QueryNearest(ctx context.Context, vector []float32, k int, profileId core.ID) ([]core.VectorMatch, error) {
	if k < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []core.VectorMatch
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || len(doc.Vector) == 0 {
				continue
			}
			if profileId != 0 && doc.ProfileId != profileId {
				continue
			}

			matches = append(matches, core.VectorMatch{
				Id:       doc.Id,
				Distance: cosineDistance(vector, doc.Vector),
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
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// readDocument reads a document from the transaction.
func (s *DocumentStore) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
