package openai

import "errors"

var (
	// ErrNoEmbedding is returned when the backend reports success but
	// yields no vector for an input text.
	ErrNoEmbedding = errors.New("backend returned no embedding")

	// ErrDimensionMismatch is returned when the backend returns vectors of
	// a different dimension than earlier in the process lifetime. Stored
	// vectors are only comparable within a single dimension, so a model
	// swap behind the same host must fail loudly instead of corrupting
	// match results.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
