package ingestion

import "errors"

var (
	// ErrOpportunityStoreRequired is returned when an opportunity store is not provided.
	ErrOpportunityStoreRequired = errors.New("opportunity store required")

	// ErrFingerprintIndexRequired is returned when a fingerprint index is not provided.
	ErrFingerprintIndexRequired = errors.New("fingerprint index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
