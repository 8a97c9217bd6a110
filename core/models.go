package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint computes the dedup fingerprint for an opportunity from its
// normalized title and URL. Two records with the same fingerprint are the
// same opportunity regardless of differences in description or keywords.
func Fingerprint(title, url string) ID {
	return IDFromContent(normalizeField(title) + "|" + normalizeField(url))
}

// DocumentFingerprint computes the dedup fingerprint for a source document
// from its normalized text and origin URL. A document is immutable once
// fingerprinted.
func DocumentFingerprint(text, url string) ID {
	return IDFromContent(normalizeField(text) + "|" + normalizeField(url))
}

// normalizeField lowercases, collapses internal whitespace, and strips a
// trailing slash so trivially different spellings hash identically.
func normalizeField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSuffix(s, "/")
}

// SourceType identifies where a source document came from.
type SourceType int

const (
	// SourceTypePDF represents an uploaded PDF document.
	SourceTypePDF SourceType = iota + 1
	// SourceTypeURL represents content fetched from a web page.
	SourceTypeURL
	// SourceTypeJSON represents a structured JSON import.
	SourceTypeJSON
	// SourceTypeCSVRow represents a single row of an imported CSV file.
	SourceTypeCSVRow
)

// OpportunityStatus tracks the lifecycle of a funding opportunity.
type OpportunityStatus int

const (
	// StatusActive means the opportunity is open and included in match queries.
	StatusActive OpportunityStatus = iota + 1
	// StatusExpired means the deadline has passed; the record is kept for
	// history but excluded from match queries.
	StatusExpired
	// StatusUnprocessed means ingestion could not resolve the record
	// (typically no usable deadline).
	StatusUnprocessed
)

// Document is a profile source document (proposal, paper, fetched page).
// Immutable once fingerprinted; the fingerprint is the dedup key.
type Document struct {
	Id          ID
	ProfileId   ID
	Name        string
	RawText     string
	URL         string
	Source      SourceType
	Fingerprint ID
	Vector      []float32 // Embedding vector (populated on processing)
	AddedAt     time.Time
}

// OpportunityRecord is a funding opportunity in the corpus.
// Never mutated in place except Status transitions and deadline refinement.
type OpportunityRecord struct {
	Id          ID
	Title       string
	Description string
	Agency      string
	Keywords    []string
	Deadline    time.Time // Zero value means no deadline is known
	URL         string
	Status      OpportunityStatus
	Fingerprint ID
	Vector      []float32 // Embedding vector (populated on ingestion)
	Seq         uint64    // Insertion order, used for deterministic tie-breaking
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// HasDeadline reports whether a deadline has been resolved for the record.
func (o *OpportunityRecord) HasDeadline() bool {
	return !o.Deadline.IsZero()
}

// EmbeddingText returns the text that is embedded for similarity search:
// title, description, agency, and keywords joined into one passage.
func (o *OpportunityRecord) EmbeddingText() string {
	parts := []string{o.Title, o.Description, o.Agency}
	if len(o.Keywords) > 0 {
		parts = append(parts, strings.Join(o.Keywords, ", "))
	}
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// ProfileRecord is a researcher profile: interests plus owned source
// documents and URLs. The profile embedding is recomputed from the
// aggregate profile text on every mutation.
type ProfileRecord struct {
	Id         ID
	Name       string
	Interests  []string
	Documents  []ID // IDs of owned source documents
	URLs       []string
	Vector     []float32 // Aggregate profile embedding
	EmbeddedAt time.Time // When the vector was last regenerated
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// HasVector reports whether the profile has a materialized embedding.
func (p *ProfileRecord) HasVector() bool {
	return len(p.Vector) > 0
}

// VectorMatch is a raw nearest-neighbor hit from a vector store query.
type VectorMatch struct {
	Id       ID
	Distance float64 // Cosine distance in [0, 2], smaller is closer
	Seq      uint64  // Insertion order of the matched record
}

// MatchResult is a scored opportunity match for a profile. Results are
// ephemeral: they are computed per query and never persisted as
// authoritative scores.
type MatchResult struct {
	ProfileId     ID
	OpportunityId ID
	Title         string
	Agency        string
	Deadline      time.Time
	RawDistance   float64
	Confidence    int // 0-100, batch-relative (see match.Normalize)
}

// ReusableContent pairs a profile source document with a rationale for how
// it could be reused for an opportunity.
type ReusableContent struct {
	Document  string
	Rationale string
}

// Explanation is a generated, structured explanation of why an opportunity
// matches a profile. Parsed is false when the generative output did not
// match the expected structure and Summary holds the raw text.
type Explanation struct {
	ProfileId     ID
	OpportunityId ID
	Summary       string
	Reusable      []ReusableContent
	NextSteps     []string
	Parsed        bool
	GeneratedAt   time.Time
}
