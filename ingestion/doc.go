// Package ingestion provides deduplicating bulk intake of funding opportunities.
//
// The Tracker type manages the ingestion workflow for raw records, including:
//   - Fingerprint-based duplicate detection within and across batches
//   - Three-stage deadline resolution (explicit text, fetched URL content,
//     generative extraction)
//   - Expiry filtering and embedding generation for retained records
//
// Embedding and storage of accepted records is performed concurrently using a
// worker pool. Records whose deadline cannot be resolved are persisted without
// a vector and reported in the batch summary rather than silently dropped.
package ingestion
