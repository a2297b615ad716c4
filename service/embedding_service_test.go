package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/rag-be/types"
	"github.com/tieubaoca/rag-be/utils"
)

type fakeEmbeddingAPI struct {
	calls     int
	failCalls map[int]error
	batches   [][]string
	short     bool
	onCall    func(call int)
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	req := conv.Convert()
	texts := req.Input.([]string)
	f.batches = append(f.batches, texts)

	if err, ok := f.failCalls[f.calls]; ok {
		return openai.EmbeddingResponse{}, err
	}

	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	data := make([]openai.Embedding, n)
	for i := 0; i < n; i++ {
		data[i] = openai.Embedding{Embedding: []float32{float32(len(texts[i]))}, Index: i}
	}
	return openai.EmbeddingResponse{Data: data}, nil
}

func newTestEmbeddingService(api embeddingAPI, batchSize, maxRetries int) *EmbeddingService {
	svc := newEmbeddingService(api, "text-embedding-3-large", batchSize)
	svc.retryCfg = utils.RetryConfig{MaxRetries: maxRetries, InitialDelay: time.Millisecond, BackoffFactor: 1.0}
	return svc
}

func chunkFixtures(contents ...string) []types.ProcessedChunk {
	chunks := make([]types.ProcessedChunk, len(contents))
	for i, content := range contents {
		chunks[i] = types.ProcessedChunk{ID: content + "_id", Content: content}
	}
	return chunks
}

func TestGenerateEmbeddingsEmptyInput(t *testing.T) {
	api := &fakeEmbeddingAPI{}
	svc := newTestEmbeddingService(api, 16, 0)

	vectors, err := svc.GenerateEmbeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Zero(t, api.calls)
}

func TestGenerateEmbeddingsSingleCall(t *testing.T) {
	api := &fakeEmbeddingAPI{}
	svc := newTestEmbeddingService(api, 16, 0)

	vectors, err := svc.GenerateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{1}, vectors[0])
	assert.Equal(t, []float32{3}, vectors[2])
	assert.Equal(t, 1, api.calls)
}

func TestGenerateEmbeddingsLengthMismatch(t *testing.T) {
	api := &fakeEmbeddingAPI{short: true}
	svc := newTestEmbeddingService(api, 16, 0)

	_, err := svc.GenerateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 embeddings")
}

func TestGenerateEmbeddingsRetriesTransientFailure(t *testing.T) {
	api := &fakeEmbeddingAPI{failCalls: map[int]error{1: errors.New("rate limited")}}
	svc := newTestEmbeddingService(api, 16, 1)

	vectors, err := svc.GenerateEmbeddings(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, 2, api.calls)
}

func TestEmbedChunksBatches(t *testing.T) {
	api := &fakeEmbeddingAPI{}
	svc := newTestEmbeddingService(api, 2, 0)
	chunks := chunkFixtures("a", "bb", "ccc", "dddd", "eeeee")

	results, err := svc.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, results, 5)

	require.Len(t, api.batches, 3)
	assert.Equal(t, []string{"a", "bb"}, api.batches[0])
	assert.Equal(t, []string{"ccc", "dddd"}, api.batches[1])
	assert.Equal(t, []string{"eeeee"}, api.batches[2])

	for i, r := range results {
		assert.Equal(t, chunks[i].ID, r.Chunk.ID)
		assert.Equal(t, []float32{float32(len(chunks[i].Content))}, r.Vector)
	}
}

func TestEmbedChunksSkipsFailedBatch(t *testing.T) {
	api := &fakeEmbeddingAPI{failCalls: map[int]error{2: errors.New("boom")}}
	svc := newTestEmbeddingService(api, 2, 0)
	chunks := chunkFixtures("a", "bb", "ccc", "dddd", "eeeee")

	results, err := svc.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a_id", results[0].Chunk.ID)
	assert.Equal(t, "bb_id", results[1].Chunk.ID)
	assert.Equal(t, "eeeee_id", results[2].Chunk.ID)
}

func TestEmbedChunksStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeEmbeddingAPI{failCalls: map[int]error{1: errors.New("aborted")}}
	api.onCall = func(call int) {
		if call == 1 {
			cancel()
		}
	}
	svc := newTestEmbeddingService(api, 2, 0)

	results, err := svc.EmbedChunks(ctx, chunkFixtures("a", "bb", "ccc"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, 1, api.calls)
}
