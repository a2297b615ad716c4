package service

import (
	"context"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/tieubaoca/rag-be/types"
	"github.com/tieubaoca/rag-be/utils"
)

// Embedder turns text into vectors.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	EmbedChunks(ctx context.Context, chunks []types.ProcessedChunk) ([]types.EmbeddedChunk, error)
}

type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingService generates embeddings via the OpenAI embeddings API,
// either plain or Azure-hosted.
type EmbeddingService struct {
	client    embeddingAPI
	model     string
	batchSize int
	retryCfg  utils.RetryConfig
}

var _ Embedder = (*EmbeddingService)(nil)

func NewEmbeddingService(endpoint, apiKey, model string, batchSize int) *EmbeddingService {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = endpoint
	}
	return newEmbeddingService(openai.NewClientWithConfig(config), model, batchSize)
}

func NewAzureEmbeddingService(endpoint, apiKey, deployment, apiVersion string, batchSize int) *EmbeddingService {
	config := openai.DefaultAzureConfig(apiKey, endpoint)
	if apiVersion != "" {
		config.APIVersion = apiVersion
	}
	return newEmbeddingService(openai.NewClientWithConfig(config), deployment, batchSize)
}

func newEmbeddingService(client embeddingAPI, model string, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &EmbeddingService{
		client:    client,
		model:     model,
		batchSize: batchSize,
		retryCfg:  utils.DefaultRetryConfig,
	}
}

// GenerateEmbeddings embeds all texts in a single API call. The call is
// retried before the error is surfaced.
func (s *EmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var embeddings [][]float32
	err := utils.Retry(ctx, s.retryCfg, "generate embeddings", func() error {
		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(s.model),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
		}
		vectors := make([][]float32, len(resp.Data))
		for i, item := range resp.Data {
			vectors[i] = item.Embedding
		}
		embeddings = vectors
		return nil
	})
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}

// EmbedChunks embeds chunks in batches. A batch that keeps failing is logged
// and skipped so the rest of the corpus still gets embedded; only context
// cancellation aborts the loop.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []types.ProcessedChunk) ([]types.EmbeddedChunk, error) {
	var results []types.EmbeddedChunk
	total := len(chunks)
	totalBatches := (total + s.batchSize - 1) / s.batchSize

	for i := 0; i < total; i += s.batchSize {
		end := i + s.batchSize
		if end > total {
			end = total
		}
		batch := chunks[i:end]
		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Content
		}

		embeddings, err := s.GenerateEmbeddings(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Printf("Failed to embed batch starting at index %d: %v", i, err)
			continue
		}

		for j, chunk := range batch {
			results = append(results, types.EmbeddedChunk{Chunk: chunk, Vector: embeddings[j]})
		}
		log.Printf("Embedded batch %d/%d (%d chunks)", i/s.batchSize+1, totalBatches, len(batch))
	}

	log.Printf("Successfully embedded %d/%d chunks", len(results), total)
	return results, nil
}
