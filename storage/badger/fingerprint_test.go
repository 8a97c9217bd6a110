package badger

import (
	"context"
	"testing"

	"github.com/poiesic/fundmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIndex_AddAndContains(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	fp := core.Fingerprint("Some Grant", "https://grants.example/1")

	found, err := stores.Fingerprints.Contains(ctx, fp)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, stores.Fingerprints.Add(ctx, fp))

	found, err = stores.Fingerprints.Contains(ctx, fp)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFingerprintIndex_AddIsIdempotent(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	fp := core.Fingerprint("Repeat", "https://grants.example/2")
	require.NoError(t, stores.Fingerprints.Add(ctx, fp))
	require.NoError(t, stores.Fingerprints.Add(ctx, fp))

	count, err := stores.Fingerprints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFingerprintIndex_Count(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	for _, url := range []string{"https://a", "https://b", "https://c"} {
		require.NoError(t, stores.Fingerprints.Add(ctx, core.Fingerprint("t", url)))
	}

	count, err := stores.Fingerprints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFingerprintIndex_IsolatedFromOpportunityKeys(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// An opportunity upsert must not leak entries into the fingerprint index
	_, err := stores.Opportunities.Upsert(ctx, makeOpportunity("Isolated", "https://iso.example", nil))
	require.NoError(t, err)

	count, err := stores.Fingerprints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
