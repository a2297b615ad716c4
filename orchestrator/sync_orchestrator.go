package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tieubaoca/rag-be/connector"
	"github.com/tieubaoca/rag-be/processor"
	"github.com/tieubaoca/rag-be/types"
)

// Embedder is the slice of the embedding service the sync needs.
type Embedder interface {
	EmbedChunks(ctx context.Context, chunks []types.ProcessedChunk) ([]types.EmbeddedChunk, error)
}

// Store is the slice of the vector index the sync needs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Clear(ctx context.Context) (int, error)
	UploadChunks(ctx context.Context, chunks []types.EmbeddedChunk) (types.UploadResult, error)
}

// SyncOrchestrator coordinates the full resync workflow: prepare the index,
// fetch, chunk, embed, upload.
type SyncOrchestrator struct {
	connector connector.Connector
	parser    *processor.Parser
	embedder  Embedder
	store     Store
}

func NewSyncOrchestrator(conn connector.Connector, parser *processor.Parser, embedder Embedder, store Store) *SyncOrchestrator {
	return &SyncOrchestrator{
		connector: conn,
		parser:    parser,
		embedder:  embedder,
		store:     store,
	}
}

// RunFullSync executes the complete sync workflow and always returns stats.
// Errors never escape; they are recorded in the stats and reflected in the
// success flag. Stats are finalized on every exit path.
func (o *SyncOrchestrator) RunFullSync(ctx context.Context) *types.SyncStats {
	startTime := time.Now()
	log.Println(strings.Repeat("=", 80))
	log.Println("Starting full sync process")
	log.Println(strings.Repeat("=", 80))

	stats := &types.SyncStats{
		RunID:     uuid.NewString(),
		StartTime: startTime,
		Errors:    []string{},
	}

	defer func() {
		endTime := time.Now()
		stats.EndTime = endTime
		stats.DurationSeconds = endTime.Sub(startTime).Seconds()
		logSummary(stats)
	}()

	fail := func(err error) {
		msg := fmt.Sprintf("Fatal error during sync: %v", err)
		log.Print(msg)
		stats.Errors = append(stats.Errors, msg)
	}

	log.Println("Step 1: Ensuring search schema exists...")
	if err := o.store.EnsureSchema(ctx); err != nil {
		fail(err)
		return stats
	}

	log.Println("Step 2: Clearing search index...")
	if _, err := o.store.Clear(ctx); err != nil {
		fail(err)
		return stats
	}

	log.Println("Step 3: Connecting to source...")
	if err := o.connector.Connect(ctx); err != nil {
		fail(err)
		return stats
	}

	log.Println("Step 4: Fetching documents...")
	documents, err := o.connector.FetchAllDocuments(ctx)
	if err != nil {
		fail(err)
		return stats
	}
	stats.DocumentsFetched = len(documents)
	if len(documents) == 0 {
		log.Println("No documents fetched from source")
		stats.Success = true
		return stats
	}

	log.Println("Step 5: Processing and chunking documents...")
	chunks := o.parser.ProcessDocuments(documents)
	stats.ChunksCreated = len(chunks)
	if len(chunks) == 0 {
		log.Println("No chunks created from documents")
		stats.Success = true
		return stats
	}

	log.Println("Step 6: Generating embeddings...")
	embedded, err := o.embedder.EmbedChunks(ctx, chunks)
	stats.ChunksEmbedded = len(embedded)
	if err != nil {
		fail(err)
		return stats
	}
	if len(embedded) == 0 {
		log.Println("Failed to generate embeddings")
		return stats
	}

	log.Println("Step 7: Uploading chunks to the search index...")
	result, err := o.store.UploadChunks(ctx, embedded)
	stats.ChunksUploaded = result.Uploaded
	stats.FailedUploads = result.Failed
	if err != nil {
		fail(err)
		return stats
	}

	stats.Success = true
	return stats
}

func logSummary(stats *types.SyncStats) {
	status := "FAILED"
	if stats.Success {
		status = "SUCCESS"
	}
	log.Println(strings.Repeat("=", 80))
	log.Println("Sync Complete")
	log.Println(strings.Repeat("=", 80))
	log.Printf("Status: %s", status)
	log.Printf("Duration: %.2f seconds", stats.DurationSeconds)
	log.Printf("Documents fetched: %d", stats.DocumentsFetched)
	log.Printf("Chunks created: %d", stats.ChunksCreated)
	log.Printf("Chunks embedded: %d", stats.ChunksEmbedded)
	log.Printf("Chunks uploaded: %d", stats.ChunksUploaded)
	log.Printf("Failed uploads: %d", stats.FailedUploads)
	if len(stats.Errors) > 0 {
		log.Printf("Errors encountered: %d", len(stats.Errors))
		for _, e := range stats.Errors {
			log.Printf("  - %s", e)
		}
	}
	log.Println(strings.Repeat("=", 80))
}
