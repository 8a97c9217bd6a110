package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The ai interfaces require implementations to be safe for concurrent use,
// and callers fan work out to these doubles from worker pools.
func TestMocks_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder()
	generator := NewMockGenerator()
	extractor := NewMockDeadlineExtractor()

	const workers = 8
	const callsPerWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerWorker; j++ {
				_, err := embedder.EmbedText(ctx, "sensor networks")
				assert.NoError(t, err)
				_, err = generator.GenerateText(ctx, "explain the match")
				assert.NoError(t, err)
				_, err = extractor.ExtractDeadline(ctx, "due 2099-01-31")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*callsPerWorker, embedder.CallCount())
	assert.Equal(t, workers*callsPerWorker, generator.CallCount())
	assert.Equal(t, workers*callsPerWorker, extractor.CallCount())
	assert.Len(t, generator.Prompts(), workers*callsPerWorker)
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder()

	a, err := embedder.EmbedText(ctx, "coastal resilience")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "coastal resilience")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 384)
}
