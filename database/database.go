package database

import (
	"context"

	"github.com/tieubaoca/rag-be/types"
)

// Store is the full surface of the vector index: schema management, bulk
// writes for the sync pipeline, and the two retrieval modes.
type Store interface {
	// EnsureSchema creates the chunk class if it does not exist yet.
	EnsureSchema(ctx context.Context) error
	// Clear deletes every object of the chunk class and reports how many
	// were removed.
	Clear(ctx context.Context) (int, error)
	// UploadChunks indexes embedded chunks in batches and accounts for
	// per-object failures. Only context cancellation aborts the upload.
	UploadChunks(ctx context.Context, chunks []types.EmbeddedChunk) (types.UploadResult, error)

	VectorSearch(ctx context.Context, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error)
	HybridSearch(ctx context.Context, query string, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error)
}
