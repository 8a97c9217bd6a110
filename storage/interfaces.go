package storage

import (
	"context"

	"github.com/poiesic/fundmatch/core"
)

// Store provides common operations shared across all typed stores.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the store and releases resources.
	Close() error
}

// OpportunityStore manages funding opportunity records. Each store owns its
// own key space; opportunities are never visible to profile or document
// queries and vice versa.
type OpportunityStore interface {
	Store

	// Upsert writes a record keyed by its fingerprint-derived ID.
	// New records are assigned a monotonic insertion sequence; updates
	// preserve the original Seq and InsertedAt. The write is atomic:
	// concurrent readers see the old record or the new one, never a
	// partial state.
	Upsert(ctx context.Context, record *core.OpportunityRecord) (*core.OpportunityRecord, error)

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.OpportunityRecord, error)

	// GetByFingerprint retrieves a record by its dedup fingerprint.
	// Returns ErrNotFound if no record carries the fingerprint.
	GetByFingerprint(ctx context.Context, fp core.ID) (*core.OpportunityRecord, error)

	// Delete removes records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	Delete(ctx context.Context, ids ...core.ID) error

	// UpdateStatus transitions a record's lifecycle status.
	// Returns ErrNotFound if the record doesn't exist.
	UpdateStatus(ctx context.Context, id core.ID, status core.OpportunityStatus) error

	// QueryNearest returns up to k records nearest to the query vector by
	// cosine distance, ascending. Ties are broken by insertion order (Seq).
	// Records without vectors are skipped. When activeOnly is set, expired
	// and unprocessed records are excluded. k larger than the corpus
	// returns everything without error.
	QueryNearest(ctx context.Context, vector []float32, k int, activeOnly bool) ([]core.VectorMatch, error)

	// All iterates every stored record in undefined order, invoking fn for
	// each. Iteration stops early if fn returns an error.
	All(ctx context.Context, fn func(record *core.OpportunityRecord) error) error

	// Count returns the number of stored records, optionally filtered by status.
	// Pass 0 to count all records.
	Count(ctx context.Context, status core.OpportunityStatus) (int, error)
}

// ProfileStore manages researcher profile records.
type ProfileStore interface {
	Store

	// Upsert writes a profile keyed by its ID. Atomic per ID.
	Upsert(ctx context.Context, record *core.ProfileRecord) (*core.ProfileRecord, error)

	// Get retrieves a profile by ID.
	// Returns ErrNotFound if the profile doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.ProfileRecord, error)

	// Delete removes profiles by their IDs.
	// Returns ErrNotFound if any profile doesn't exist.
	Delete(ctx context.Context, ids ...core.ID) error

	// All iterates every stored profile in undefined order.
	All(ctx context.Context, fn func(record *core.ProfileRecord) error) error
}

// DocumentStore manages profile source documents (proposals, papers,
// fetched pages).
type DocumentStore interface {
	Store

	// Upsert writes a document keyed by its ID. Atomic per ID.
	Upsert(ctx context.Context, doc *core.Document) (*core.Document, error)

	// Get retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Document, error)

	// GetByProfile retrieves all documents owned by a profile.
	GetByProfile(ctx context.Context, profileId core.ID) ([]*core.Document, error)

	// Delete removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	Delete(ctx context.Context, ids ...core.ID) error

	// QueryNearest returns up to k documents nearest to the query vector by
	// cosine distance, ascending. When profileId is non-zero, only that
	// profile's documents are considered.
	QueryNearest(ctx context.Context, vector []float32, k int, profileId core.ID) ([]core.VectorMatch, error)
}

// FingerprintIndex is the append-only record of every opportunity
// fingerprint ever ingested. Entries are never removed; expiry changes an
// opportunity's status, not its membership here.
type FingerprintIndex interface {
	Store

	// Add appends a fingerprint to the index. Adding an existing
	// fingerprint is a no-op.
	Add(ctx context.Context, fp core.ID) error

	// Contains reports whether the fingerprint has ever been ingested.
	Contains(ctx context.Context, fp core.ID) (bool, error)

	// Count returns the number of indexed fingerprints.
	Count(ctx context.Context) (int, error)
}
