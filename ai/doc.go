// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the hosted AI services used by the
// matching pipeline, plus the rate-limited client that fronts them.
//
// The package defines three service interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces free-form text from a prompt
//   - DeadlineExtractor: pulls a submission deadline out of opportunity text
//
// A Provider aggregates the three services for initialization and lifecycle
// management. Implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Rate limiting and retries
//
// All API traffic is expected to flow through a single Client per process.
// The Client enforces a sliding-window requests-per-minute budget shared by
// every worker, retries quota errors with exponential backoff, retries
// transport errors a small fixed number of times, and surfaces typed errors
// (QuotaExhaustedError, TransientAPIError) once retries are exhausted. The
// limiter's window state is the only process-wide mutable state in the
// system; it is mutex-guarded and safe for concurrent callers.
//
// The Client takes an injectable Clock so rate-limit and backoff behavior
// is deterministic under test.
package ai
