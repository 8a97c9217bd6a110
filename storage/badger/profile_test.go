package badger

import (
	"context"
	"testing"

	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileStore_UpsertAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	profile := &core.ProfileRecord{
		Id:        core.IDFromContent("dr-chen"),
		Name:      "dr-chen",
		Interests: []string{"marine ecology"},
	}

	stored, err := stores.Profiles.Upsert(ctx, profile)
	require.NoError(t, err)
	assert.False(t, stored.InsertedAt.IsZero())

	got, err := stores.Profiles.Get(ctx, profile.Id)
	require.NoError(t, err)
	assert.Equal(t, "dr-chen", got.Name)
	assert.Equal(t, []string{"marine ecology"}, got.Interests)
}

func TestProfileStore_UpsertPreservesInsertedAt(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	profile := &core.ProfileRecord{Id: core.IDFromContent("p"), Name: "p"}
	first, err := stores.Profiles.Upsert(ctx, profile)
	require.NoError(t, err)
	insertedAt := first.InsertedAt

	updated := &core.ProfileRecord{
		Id:     profile.Id,
		Name:   "p",
		Vector: []float32{0.5, 0.5},
	}
	second, err := stores.Profiles.Upsert(ctx, updated)
	require.NoError(t, err)
	assert.True(t, insertedAt.Equal(second.InsertedAt))

	got, err := stores.Profiles.Get(ctx, profile.Id)
	require.NoError(t, err)
	assert.True(t, got.HasVector())
	assert.True(t, insertedAt.Equal(got.InsertedAt))
}

func TestProfileStore_GetMissing(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Profiles.Get(context.Background(), core.ID(7))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProfileStore_Delete(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	profile := &core.ProfileRecord{Id: core.IDFromContent("gone"), Name: "gone"}
	_, err := stores.Profiles.Upsert(ctx, profile)
	require.NoError(t, err)

	require.NoError(t, stores.Profiles.Delete(ctx, profile.Id))
	_, err = stores.Profiles.Get(ctx, profile.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, stores.Profiles.Delete(ctx, profile.Id), storage.ErrNotFound)
}

func TestProfileStore_All(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := stores.Profiles.Upsert(ctx, &core.ProfileRecord{Id: core.IDFromContent(name), Name: name})
		require.NoError(t, err)
	}

	count := 0
	err := stores.Profiles.All(ctx, func(r *core.ProfileRecord) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
