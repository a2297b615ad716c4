/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/rag-be/config"
	"github.com/tieubaoca/rag-be/connector"
	"github.com/tieubaoca/rag-be/database"
	"github.com/tieubaoca/rag-be/orchestrator"
	"github.com/tieubaoca/rag-be/processor"
	"github.com/tieubaoca/rag-be/repository"
	"github.com/tieubaoca/rag-be/types"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sync from Confluence into the vector index",
	Long: `Fetches all pages from the configured Confluence spaces, chunks and
embeds them, and rebuilds the Weaviate index. Exits non-zero when the run
fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		ctx := context.Background()

		orch, err := buildSyncPipeline(cfg)
		if err != nil {
			log.Fatalf("Failed to build sync pipeline: %v", err)
		}
		repo := buildSyncRepo(ctx, cfg)

		stats := orch.RunFullSync(ctx)
		persistSyncStats(ctx, repo, stats)

		if !stats.Success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func buildSyncPipeline(cfg *config.Config) (*orchestrator.SyncOrchestrator, error) {
	conn := connector.NewConfluenceConnector(
		cfg.Confluence.BaseURL,
		cfg.Confluence.Username,
		cfg.Confluence.APIToken,
		cfg.Confluence.Spaces,
		cfg.Confluence.RequestsPerSecond,
	)
	parser, err := processor.NewParser(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %v", err)
	}
	store, err := database.NewWeaviateStore(cfg.Weaviate, cfg.Processing.IndexingBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Weaviate database: %v", err)
	}
	embedder := buildEmbedder(cfg)

	return orchestrator.NewSyncOrchestrator(conn, parser, embedder, store), nil
}

// buildSyncRepo returns nil when MongoDB is not configured; run history is
// then simply not persisted.
func buildSyncRepo(ctx context.Context, cfg *config.Config) repository.SyncRunRepo {
	if cfg.Mongo.URI == "" {
		return nil
	}
	mongoDB, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Printf("Error connecting to MongoDB, sync runs will not be persisted: %v", err)
		return nil
	}
	return repository.NewSyncRunRepo(mongoDB.Database())
}

// persistSyncStats saves the run record. Persistence failures never fail the
// sync itself.
func persistSyncStats(ctx context.Context, repo repository.SyncRunRepo, stats *types.SyncStats) {
	if repo == nil {
		return
	}
	if err := repo.SaveRun(ctx, stats); err != nil {
		log.Printf("Error saving sync run %s: %v", stats.RunID, err)
	}
}
