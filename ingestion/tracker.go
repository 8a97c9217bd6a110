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


package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/fundmatch/ai"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

const defaultPoolSize = 4

// RawRecord is one opportunity as delivered by a batch source before any
// processing.
type RawRecord struct {
	Title        string
	Description  string
	Agency       string
	Keywords     []string
	DeadlineText string
	URL          string
}

// UnprocessedRecord describes a record the tracker could not ingest,
// together with the reason.
type UnprocessedRecord struct {
	Title  string
	URL    string
	Reason string
}

// Summary reports the outcome of one ingestion batch. A batch always
// produces a summary, even when individual records fail.
type Summary struct {
	Added             int
	DuplicatesSkipped int
	ExpiredSkipped    int
	Unprocessed       []UnprocessedRecord
}

// Tracker performs idempotent, deduplicating ingestion of opportunity
// records. Dedup and deadline resolution run sequentially per record so a
// batch is internally consistent; embedding and upsert fan out on a
// bounded worker pool.
type Tracker struct {
	opportunities storage.OpportunityStore
	fingerprints  storage.FingerprintIndex
	embedder      ai.Embedder
	extractor     ai.DeadlineExtractor
	fetcher       *Fetcher
	pool          *ants.Pool
	logger        *slog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker) error

// WithPoolSize sets the worker pool size for embedding and upsert work.
// Default is 4, with a minimum of 1.
func WithPoolSize(size int) TrackerOption {
	return func(t *Tracker) error {
		if size < 1 {
			size = 1
		}
		if t.pool != nil {
			t.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		t.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// WithFetcher sets the page fetcher used for URL-based deadline extraction.
// Pass nil to disable URL fetching.
func WithFetcher(fetcher *Fetcher) TrackerOption {
	return func(t *Tracker) error {
		t.fetcher = fetcher
		return nil
	}
}

// WithDeadlineExtractor sets the generative deadline extractor used as the
// last resolution stage. Pass nil to disable generative extraction.
func WithDeadlineExtractor(extractor ai.DeadlineExtractor) TrackerOption {
	return func(t *Tracker) error {
		t.extractor = extractor
		return nil
	}
}

// NewTracker creates an ingestion tracker.
func NewTracker(
	opportunities storage.OpportunityStore,
	fingerprints storage.FingerprintIndex,
	embedder ai.Embedder,
	opts ...TrackerOption,
) (*Tracker, error) {
	if opportunities == nil {
		return nil, ErrOpportunityStoreRequired
	}
	if fingerprints == nil {
		return nil, ErrFingerprintIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		opportunities: opportunities,
		fingerprints:  fingerprints,
		embedder:      embedder,
		fetcher:       NewFetcher(),
		pool:          pool,
		logger:        slog.Default().With("component", "ingestion-tracker"),
	}

	for _, opt := range opts {
		if optErr := opt(t); optErr != nil {
			t.Release()
			return nil, optErr
		}
	}

	return t, nil
}

// Release releases the worker pool.
// The tracker should not be used after calling Release.
func (t *Tracker) Release() {
	if t.pool != nil {
		t.pool.Release()
	}
}

// Ingest processes a batch of raw records. Re-running an identical batch
// adds nothing the second time: dedup is evaluated against the fingerprint
// index plus fingerprints committed earlier in the same batch.
//
// Record-level failures (unresolvable deadline, embed or store errors) are
// isolated into Summary.Unprocessed; the batch always returns a summary.
// Cancellation is checked between records, so an in-flight upsert is never
// interrupted mid-write.
func (t *Tracker) Ingest(ctx context.Context, records []RawRecord) (Summary, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary Summary
	)
	seen := make(map[core.ID]bool)
	now := time.Now().UTC()

	for _, raw := range records {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return summary, err
		}

		if raw.Title == "" {
			mu.Lock()
			summary.Unprocessed = append(summary.Unprocessed, UnprocessedRecord{
				Title: raw.Title, URL: raw.URL, Reason: "missing title",
			})
			mu.Unlock()
			continue
		}

		fp := core.Fingerprint(raw.Title, raw.URL)
		if seen[fp] {
			mu.Lock()
			summary.DuplicatesSkipped++
			mu.Unlock()
			continue
		}
		known, err := t.fingerprints.Contains(ctx, fp)
		if err != nil {
			wg.Wait()
			return summary, err
		}
		if known {
			seen[fp] = true
			mu.Lock()
			summary.DuplicatesSkipped++
			mu.Unlock()
			continue
		}
		seen[fp] = true

		deadline, reason := t.resolveDeadline(ctx, raw)
		if reason != "" {
			mu.Lock()
			summary.Unprocessed = append(summary.Unprocessed, UnprocessedRecord{
				Title: raw.Title, URL: raw.URL, Reason: reason,
			})
			mu.Unlock()
			// Keep the record retrievable for later reprocessing, but
			// without a vector it never appears in match queries.
			t.storeUnprocessed(ctx, fp, raw)
			continue
		}
		if !deadline.IsZero() && deadline.Before(now) {
			mu.Lock()
			summary.ExpiredSkipped++
			mu.Unlock()
			continue
		}

		record := &core.OpportunityRecord{
			Id:          fp,
			Title:       raw.Title,
			Description: raw.Description,
			Agency:      raw.Agency,
			Keywords:    raw.Keywords,
			Deadline:    deadline,
			URL:         raw.URL,
			Status:      core.StatusActive,
			Fingerprint: fp,
		}

		wg.Add(1)
		submitErr := t.pool.Submit(func() {
			defer wg.Done()
			if err := t.embedAndStore(ctx, record); err != nil {
				t.logger.Error("failed to ingest record", "title", raw.Title, "err", err)
				mu.Lock()
				summary.Unprocessed = append(summary.Unprocessed, UnprocessedRecord{
					Title: raw.Title, URL: raw.URL, Reason: err.Error(),
				})
				mu.Unlock()
				return
			}
			mu.Lock()
			summary.Added++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			summary.Unprocessed = append(summary.Unprocessed, UnprocessedRecord{
				Title: raw.Title, URL: raw.URL, Reason: submitErr.Error(),
			})
			mu.Unlock()
		}
	}

	wg.Wait()

	t.logger.Info("ingestion batch complete",
		"added", summary.Added,
		"duplicates", summary.DuplicatesSkipped,
		"expired", summary.ExpiredSkipped,
		"unprocessed", len(summary.Unprocessed))

	return summary, nil
}

// embedAndStore embeds the record text, upserts the record, and appends
// its fingerprint to the index.
func (t *Tracker) embedAndStore(ctx context.Context, record *core.OpportunityRecord) error {
	vector, err := t.embedder.EmbedText(ctx, record.EmbeddingText())
	if err != nil {
		return err
	}
	record.Vector = vector

	if _, err := t.opportunities.Upsert(ctx, record); err != nil {
		return err
	}
	return t.fingerprints.Add(ctx, record.Fingerprint)
}

// storeUnprocessed persists a record that failed deadline resolution with
// StatusUnprocessed so it stays retrievable. Storage failures here are
// logged, not propagated: the record is already reported in the summary.
func (t *Tracker) storeUnprocessed(ctx context.Context, fp core.ID, raw RawRecord) {
	record := &core.OpportunityRecord{
		Id:          fp,
		Title:       raw.Title,
		Description: raw.Description,
		Agency:      raw.Agency,
		Keywords:    raw.Keywords,
		URL:         raw.URL,
		Status:      core.StatusUnprocessed,
		Fingerprint: fp,
	}
	if _, err := t.opportunities.Upsert(ctx, record); err != nil {
		t.logger.Warn("failed to store unprocessed record", "title", raw.Title, "err", err)
	}
}

// resolveDeadline runs the three-stage deadline fallback: explicit text,
// then the fetched URL content, then generative extraction from the
// description. A non-empty reason means no stage produced a usable
// deadline.
func (t *Tracker) resolveDeadline(ctx context.Context, raw RawRecord) (time.Time, string) {
	// Stage 1: explicit deadline column
	if raw.DeadlineText != "" {
		if deadline, ok := ParseDeadline(raw.DeadlineText); ok {
			return deadline, ""
		}
	}

	// Stage 2: heuristic scan of the fetched page
	if t.fetcher != nil && raw.URL != "" {
		text, err := t.fetcher.FetchText(ctx, raw.URL)
		if err != nil {
			t.logger.Debug("url fetch failed", "url", raw.URL, "err", err)
		} else if hint := ScanDeadline(text); hint != "" {
			if deadline, ok := ParseDeadline(hint); ok {
				return deadline, ""
			}
		}
	}

	// Stage 3: generative extraction from the free-text description
	if t.extractor != nil && raw.Description != "" {
		deadline, err := t.extractor.ExtractDeadline(ctx, raw.Description)
		if err != nil {
			t.logger.Warn("generative deadline extraction failed", "title", raw.Title, "err", err)
		} else if !deadline.IsZero() {
			return deadline, ""
		}
	}

	return time.Time{}, "no resolvable deadline"
}

// Sweep re-evaluates deadlines on all active records and flips past-due
// ones to expired. Expired records drop out of match queries but remain
// retrievable by direct lookup. Returns the number of records expired.
func (t *Tracker) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	var pastDue []core.ID
	err := t.opportunities.All(ctx, func(record *core.OpportunityRecord) error {
		if record.Status == core.StatusActive && record.HasDeadline() && record.Deadline.Before(now) {
			pastDue = append(pastDue, record.Id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range pastDue {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if err := t.opportunities.UpdateStatus(ctx, id, core.StatusExpired); err != nil {
			return expired, err
		}
		expired++
	}

	if expired > 0 {
		t.logger.Info("expiry sweep complete", "expired", expired)
	}
	return expired, nil
}
