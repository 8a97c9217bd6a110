package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/fundmatch/ai/mock"
	"github.com/poiesic/fundmatch/core"
	storebadger "github.com/poiesic/fundmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, opts ...TrackerOption) (*Tracker, *storebadger.Stores, *mock.MockEmbedder) {
	t.Helper()
	stores, err := storebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	embedder := mock.NewMockEmbedder()
	opts = append([]TrackerOption{WithFetcher(nil), WithPoolSize(2)}, opts...)
	tracker, err := NewTracker(stores.Opportunities, stores.Fingerprints, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(tracker.Release)

	return tracker, stores, embedder
}

func makeRawRecord(title string) RawRecord {
	return RawRecord{
		Title:        title,
		Description:  "Research funding for " + title,
		Agency:       "NSF",
		Keywords:     []string{"research"},
		DeadlineText: "2099-06-30",
		URL:          "https://grants.example/" + title,
	}
}

func TestNewTracker_Validation(t *testing.T) {
	stores, err := storebadger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()
	embedder := mock.NewMockEmbedder()

	t.Run("nil opportunity store", func(t *testing.T) {
		_, err := NewTracker(nil, stores.Fingerprints, embedder)
		assert.Equal(t, ErrOpportunityStoreRequired, err)
	})

	t.Run("nil fingerprint index", func(t *testing.T) {
		_, err := NewTracker(stores.Opportunities, nil, embedder)
		assert.Equal(t, ErrFingerprintIndexRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewTracker(stores.Opportunities, stores.Fingerprints, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestTracker_IngestAddsRecords(t *testing.T) {
	tracker, stores, embedder := newTestTracker(t)
	ctx := context.Background()

	records := []RawRecord{makeRawRecord("Ocean Sensing"), makeRawRecord("Climate Modeling")}
	summary, err := tracker.Ingest(ctx, records)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Added)
	assert.Equal(t, 0, summary.DuplicatesSkipped)
	assert.Equal(t, 0, summary.ExpiredSkipped)
	assert.Empty(t, summary.Unprocessed)
	assert.Equal(t, 2, embedder.CallCount())

	stored, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(records[0].Title, records[0].URL))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, core.StatusActive, stored.Status)
	assert.NotEmpty(t, stored.Vector)
	assert.Equal(t, 2099, stored.Deadline.Year())

	count, err := stores.Fingerprints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTracker_IngestIsIdempotent(t *testing.T) {
	tracker, stores, _ := newTestTracker(t)
	ctx := context.Background()

	records := []RawRecord{makeRawRecord("Ocean Sensing"), makeRawRecord("Climate Modeling")}

	first, err := tracker.Ingest(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := tracker.Ingest(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.DuplicatesSkipped)

	count, err := stores.Opportunities.Count(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTracker_IngestDeduplicatesWithinBatch(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()

	record := makeRawRecord("Ocean Sensing")
	summary, err := tracker.Ingest(ctx, []RawRecord{record, record})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
}

func TestTracker_IngestSkipsExpired(t *testing.T) {
	tracker, stores, embedder := newTestTracker(t)
	ctx := context.Background()

	record := makeRawRecord("Old Program")
	record.DeadlineText = "2020-01-15"

	summary, err := tracker.Ingest(ctx, []RawRecord{record})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Added)
	assert.Equal(t, 1, summary.ExpiredSkipped)
	assert.Equal(t, 0, embedder.CallCount())

	count, err := stores.Opportunities.Count(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTracker_IngestReportsUnresolvableDeadline(t *testing.T) {
	tracker, stores, embedder := newTestTracker(t)
	ctx := context.Background()

	record := makeRawRecord("Mystery Program")
	record.DeadlineText = "rolling basis"
	record.URL = ""

	summary, err := tracker.Ingest(ctx, []RawRecord{record})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Added)
	require.Len(t, summary.Unprocessed, 1)
	assert.Equal(t, "Mystery Program", summary.Unprocessed[0].Title)
	assert.Equal(t, "no resolvable deadline", summary.Unprocessed[0].Reason)
	assert.Equal(t, 0, embedder.CallCount())

	// The record is persisted without a vector so it can be reprocessed,
	// but it never participates in matching.
	stored, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(record.Title, record.URL))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, core.StatusUnprocessed, stored.Status)
	assert.Empty(t, stored.Vector)
}

func TestTracker_IngestRejectsMissingTitle(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	summary, err := tracker.Ingest(context.Background(), []RawRecord{{URL: "https://grants.example/untitled"}})
	require.NoError(t, err)

	require.Len(t, summary.Unprocessed, 1)
	assert.Equal(t, "missing title", summary.Unprocessed[0].Reason)
}

func TestTracker_GenerativeDeadlineFallback(t *testing.T) {
	extractor := mock.NewMockDeadlineExtractor()
	tracker, stores, _ := newTestTracker(t, WithDeadlineExtractor(extractor))
	ctx := context.Background()

	record := makeRawRecord("Deep Description")
	record.DeadlineText = ""
	record.URL = ""
	record.Description = "Full proposals are reviewed after 2099-04-01 each cycle."

	summary, err := tracker.Ingest(ctx, []RawRecord{record})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, extractor.CallCount())

	stored, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(record.Title, record.URL))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, time.Date(2099, 4, 1, 0, 0, 0, 0, time.UTC), stored.Deadline)
}

func TestTracker_IngestCancelledContext(t *testing.T) {
	tracker, stores, _ := newTestTracker(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := tracker.Ingest(ctx, []RawRecord{makeRawRecord("Never Ingested")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Added)

	count, err := stores.Opportunities.Count(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTracker_Sweep(t *testing.T) {
	tracker, stores, _ := newTestTracker(t)
	ctx := context.Background()

	past := makeRawRecord("Past Program")
	future := makeRawRecord("Future Program")
	open := makeRawRecord("Open Program")

	summary, err := tracker.Ingest(ctx, []RawRecord{past, future, open})
	require.NoError(t, err)
	require.Equal(t, 3, summary.Added)

	// Age one record past its deadline after ingestion.
	pastRecord, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(past.Title, past.URL))
	require.NoError(t, err)
	pastRecord.Deadline = time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err = stores.Opportunities.Upsert(ctx, pastRecord)
	require.NoError(t, err)

	// And strip the deadline from another; no deadline means never expired.
	openRecord, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(open.Title, open.URL))
	require.NoError(t, err)
	openRecord.Deadline = time.Time{}
	_, err = stores.Opportunities.Upsert(ctx, openRecord)
	require.NoError(t, err)

	expired, err := tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	pastRecord, err = stores.Opportunities.Get(ctx, pastRecord.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusExpired, pastRecord.Status)

	futureRecord, err := stores.Opportunities.GetByFingerprint(ctx, core.Fingerprint(future.Title, future.URL))
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, futureRecord.Status)

	openRecord, err = stores.Opportunities.Get(ctx, openRecord.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, openRecord.Status)

	// A second sweep finds nothing new.
	expired, err = tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestTracker_IngestCollectsConcurrentFailures(t *testing.T) {
	tracker, stores, embedder := newTestTracker(t, WithPoolSize(4))
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding backend unavailable")
	}

	// Interleave records that fail on the pool workers with records the
	// main loop rejects directly, so both paths report concurrently.
	var records []RawRecord
	for i := 0; i < 8; i++ {
		records = append(records, makeRawRecord(fmt.Sprintf("Grant %d", i)))
		records = append(records, RawRecord{Title: "", URL: "https://grants.example/untitled"})
	}

	summary, err := tracker.Ingest(ctx, records)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Added)
	assert.Len(t, summary.Unprocessed, 16)

	embedFailures := 0
	for _, u := range summary.Unprocessed {
		if u.Reason == "embedding backend unavailable" {
			embedFailures++
		}
	}
	assert.Equal(t, 8, embedFailures)

	count, err := stores.Opportunities.Count(ctx, core.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
