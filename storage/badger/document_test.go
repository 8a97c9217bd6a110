package badger

import (
	"context"
	"testing"

	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDocument(profileId core.ID, name, text string, vector []float32) *core.Document {
	fp := core.DocumentFingerprint(text, "")
	return &core.Document{
		Id:          fp,
		ProfileId:   profileId,
		Name:        name,
		RawText:     text,
		Source:      core.SourceTypePDF,
		Fingerprint: fp,
		Vector:      vector,
	}
}

func TestDocumentStore_UpsertAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	profileId := core.IDFromContent("owner")
	doc, err := stores.Documents.Upsert(ctx, makeDocument(profileId, "prop.pdf", "reef proposal text", nil))
	require.NoError(t, err)
	assert.False(t, doc.AddedAt.IsZero())

	stored, err := stores.Documents.Get(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "prop.pdf", stored.Name)
	assert.Equal(t, profileId, stored.ProfileId)

	_, err = stores.Documents.Get(ctx, core.ID(404))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentStore_GetByProfile(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	alice := core.IDFromContent("alice")
	bob := core.IDFromContent("bob")

	_, err := stores.Documents.Upsert(ctx, makeDocument(alice, "a1", "alice first document", nil))
	require.NoError(t, err)
	_, err = stores.Documents.Upsert(ctx, makeDocument(alice, "a2", "alice second document", nil))
	require.NoError(t, err)
	_, err = stores.Documents.Upsert(ctx, makeDocument(bob, "b1", "bob only document", nil))
	require.NoError(t, err)

	aliceDocs, err := stores.Documents.GetByProfile(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceDocs, 2)

	bobDocs, err := stores.Documents.GetByProfile(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobDocs, 1)
	assert.Equal(t, "b1", bobDocs[0].Name)

	none, err := stores.Documents.GetByProfile(ctx, core.IDFromContent("nobody"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentStore_Delete(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	owner := core.IDFromContent("owner")
	doc, err := stores.Documents.Upsert(ctx, makeDocument(owner, "gone", "soon deleted", nil))
	require.NoError(t, err)

	require.NoError(t, stores.Documents.Delete(ctx, doc.Id))

	_, err = stores.Documents.Get(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	docs, err := stores.Documents.GetByProfile(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_QueryNearestFiltersByProfile(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	alice := core.IDFromContent("alice")
	bob := core.IDFromContent("bob")

	aliceDoc, err := stores.Documents.Upsert(ctx, makeDocument(alice, "a", "alice vector document", []float32{1, 0}))
	require.NoError(t, err)
	_, err = stores.Documents.Upsert(ctx, makeDocument(bob, "b", "bob vector document", []float32{1, 0}))
	require.NoError(t, err)

	matches, err := stores.Documents.QueryNearest(ctx, []float32{1, 0}, 10, alice)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, aliceDoc.Id, matches[0].Id)

	all, err := stores.Documents.QueryNearest(ctx, []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
