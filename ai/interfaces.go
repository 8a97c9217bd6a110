package ai

import (
	"context"
	"time"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free-form text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateText sends the prompt to the generative model and returns the
	// raw response text. Callers are responsible for parsing structure out
	// of the response; the generator makes no format guarantees.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// DeadlineExtractor extracts a submission deadline from free-form text.
// Implementations must be thread-safe for concurrent use.
type DeadlineExtractor interface {
	// ExtractDeadline analyzes opportunity text and returns the submission
	// deadline it describes. Returns the zero time (and nil error) when the
	// text does not mention a deadline.
	ExtractDeadline(ctx context.Context, text string) (time.Time, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages the embedding, generation, and
// deadline-extraction services, ensuring they share configuration and
// resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// DeadlineExtractor returns the deadline extraction service.
	// The returned DeadlineExtractor is safe for concurrent use.
	DeadlineExtractor() DeadlineExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
