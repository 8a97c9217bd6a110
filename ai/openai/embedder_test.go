package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_CheckDimension(t *testing.T) {
	e := &Embedder{}

	require.NoError(t, e.checkDimension(make([]float32, 384)))
	assert.NoError(t, e.checkDimension(make([]float32, 384)))

	err := e.checkDimension(make([]float32, 768))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	// The pinned dimension survives a rejected vector.
	assert.NoError(t, e.checkDimension(make([]float32, 384)))
}
