package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func makeOpportunity(title, url string, vector []float32) *core.OpportunityRecord {
	fp := core.Fingerprint(title, url)
	return &core.OpportunityRecord{
		Id:          fp,
		Title:       title,
		Description: "description of " + title,
		URL:         url,
		Status:      core.StatusActive,
		Fingerprint: fp,
		Vector:      vector,
	}
}

func TestOpportunityStore_UpsertAssignsSequence(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	first, err := stores.Opportunities.Upsert(ctx, makeOpportunity("First", "https://a.example", nil))
	require.NoError(t, err)
	second, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Second", "https://b.example", nil))
	require.NoError(t, err)

	assert.NotZero(t, first.Seq)
	assert.NotZero(t, second.Seq)
	assert.Greater(t, second.Seq, first.Seq)
	assert.False(t, first.InsertedAt.IsZero())
}

func TestOpportunityStore_UpsertPreservesSeqAndInsertedAt(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	original, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Stable", "https://s.example", nil))
	require.NoError(t, err)
	seq := original.Seq
	insertedAt := original.InsertedAt

	updated := makeOpportunity("Stable", "https://s.example", []float32{1, 0})
	updated.Description = "revised description"
	result, err := stores.Opportunities.Upsert(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, seq, result.Seq)
	assert.True(t, insertedAt.Equal(result.InsertedAt))

	stored, err := stores.Opportunities.Get(ctx, original.Id)
	require.NoError(t, err)
	assert.Equal(t, "revised description", stored.Description)
	assert.Equal(t, []float32{1, 0}, stored.Vector)
	// The persisted timestamp must round-trip exactly, not just compare
	// within codec precision.
	assert.True(t, insertedAt.Equal(stored.InsertedAt))
}

func TestOpportunityStore_GetByFingerprint(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	record, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Lookup", "https://l.example", nil))
	require.NoError(t, err)

	found, err := stores.Opportunities.GetByFingerprint(ctx, record.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, record.Id, found.Id)

	_, err = stores.Opportunities.GetByFingerprint(ctx, core.ID(999999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpportunityStore_GetMissing(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Opportunities.Get(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpportunityStore_Delete(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	record, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Doomed", "https://d.example", nil))
	require.NoError(t, err)

	require.NoError(t, stores.Opportunities.Delete(ctx, record.Id))

	_, err = stores.Opportunities.Get(ctx, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = stores.Opportunities.GetByFingerprint(ctx, record.Fingerprint)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, stores.Opportunities.Delete(ctx, record.Id), storage.ErrNotFound)
}

func TestOpportunityStore_UpdateStatus(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	record, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Expiring", "https://e.example", nil))
	require.NoError(t, err)

	require.NoError(t, stores.Opportunities.UpdateStatus(ctx, record.Id, core.StatusExpired))

	stored, err := stores.Opportunities.Get(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusExpired, stored.Status)

	assert.ErrorIs(t, stores.Opportunities.UpdateStatus(ctx, core.ID(31337), core.StatusExpired), storage.ErrNotFound)
}

func TestOpportunityStore_QueryNearestOrdering(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// Unit vectors at increasing angles from the query direction
	near, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Near", "https://near.example", []float32{0.98, 0.199}))
	require.NoError(t, err)
	mid, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Mid", "https://mid.example", []float32{0.6, 0.8}))
	require.NoError(t, err)
	far, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Far", "https://far.example", []float32{-1, 0}))
	require.NoError(t, err)

	matches, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 10, true)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, near.Id, matches[0].Id)
	assert.Equal(t, mid.Id, matches[1].Id)
	assert.Equal(t, far.Id, matches[2].Id)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
	assert.LessOrEqual(t, matches[1].Distance, matches[2].Distance)

	// k smaller than corpus truncates, k larger returns everything
	top1, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 1, true)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, near.Id, top1[0].Id)
}

func TestOpportunityStore_QueryNearestTieBreakByInsertionOrder(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// Identical vectors, so distance ties exactly
	a, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Tie A", "https://ta.example", []float32{1, 0}))
	require.NoError(t, err)
	b, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Tie B", "https://tb.example", []float32{1, 0}))
	require.NoError(t, err)

	matches, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 10, true)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, a.Id, matches[0].Id)
	assert.Equal(t, b.Id, matches[1].Id)
}

func TestOpportunityStore_QueryNearestActiveOnly(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	active, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Active", "https://act.example", []float32{1, 0}))
	require.NoError(t, err)
	expired, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Expired", "https://exp.example", []float32{1, 0}))
	require.NoError(t, err)
	require.NoError(t, stores.Opportunities.UpdateStatus(ctx, expired.Id, core.StatusExpired))

	matches, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 10, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, active.Id, matches[0].Id)

	// Expired record stays retrievable by direct lookup
	stored, err := stores.Opportunities.Get(ctx, expired.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusExpired, stored.Status)

	// Without the filter both are returned
	all, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 10, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpportunityStore_QueryNearestSkipsRecordsWithoutVectors(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	_, err := stores.Opportunities.Upsert(ctx, makeOpportunity("No Vector", "https://nv.example", nil))
	require.NoError(t, err)
	withVec, err := stores.Opportunities.Upsert(ctx, makeOpportunity("With Vector", "https://wv.example", []float32{1, 0}))
	require.NoError(t, err)

	matches, err := stores.Opportunities.QueryNearest(ctx, []float32{1, 0}, 10, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, withVec.Id, matches[0].Id)
}

func TestOpportunityStore_QueryNearestInvalidK(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Opportunities.QueryNearest(context.Background(), []float32{1, 0}, 0, true)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestOpportunityStore_Count(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	a, err := stores.Opportunities.Upsert(ctx, makeOpportunity("One", "https://1.example", nil))
	require.NoError(t, err)
	_, err = stores.Opportunities.Upsert(ctx, makeOpportunity("Two", "https://2.example", nil))
	require.NoError(t, err)
	require.NoError(t, stores.Opportunities.UpdateStatus(ctx, a.Id, core.StatusExpired))

	total, err := stores.Opportunities.Count(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	activeCount, err := stores.Opportunities.Count(ctx, core.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, activeCount)

	expiredCount, err := stores.Opportunities.Count(ctx, core.StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, 1, expiredCount)
}

func TestOpportunityStore_All(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	deadline := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	record := makeOpportunity("Walk", "https://walk.example", nil)
	record.Deadline = deadline
	_, err := stores.Opportunities.Upsert(ctx, record)
	require.NoError(t, err)

	var seen []core.ID
	err = stores.Opportunities.All(ctx, func(r *core.OpportunityRecord) error {
		seen = append(seen, r.Id)
		assert.True(t, deadline.Equal(r.Deadline))
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}
