/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/rag-be/config"
	"github.com/tieubaoca/rag-be/database"
	"github.com/tieubaoca/rag-be/handler"
	"github.com/tieubaoca/rag-be/repository"
	"github.com/tieubaoca/rag-be/service"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question answering API server",
	Long:  `Starts an HTTP server that answers questions over the synced Confluence content.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		ctx := context.Background()

		store, err := database.NewWeaviateStore(cfg.Weaviate, cfg.Processing.IndexingBatchSize)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure Weaviate schema: %v", err)
		}

		// Initialize services
		embedder := buildEmbedder(cfg)
		aiService, err := buildAIService(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}
		chatService := service.NewChatService(aiService)
		ragService := service.NewRAGService(
			embedder,
			store,
			chatService,
			cfg.RAG.TopK,
			cfg.RAG.Temperature,
			cfg.RAG.MaxTokens,
		)
		wsService := service.NewWebSocketService(ragService)

		// Sync run history is only available when MongoDB is configured.
		var syncRepo repository.SyncRunRepo
		if cfg.Mongo.URI != "" {
			mongoDB, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			syncRepo = repository.NewSyncRunRepo(mongoDB.Database())
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		askHandler := handler.NewAskHandler(ragService)
		configHandler := handler.NewConfigHandler(cfg)
		syncHandler := handler.NewSyncHandler(syncRepo)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		api := router.Group("/api")
		{
			api.POST("/ask", askHandler.HandleAsk)
			api.POST("/search", askHandler.HandleSearch)
			api.GET("/config", configHandler.HandleGetConfig)
			api.GET("/sync/runs", syncHandler.HandleListRuns)
			api.GET("/sync/runs/latest", syncHandler.HandleLatestRun)
		}
		router.GET("/health", configHandler.HandleHealth)
		router.GET("/ws/ask", func(c *gin.Context) {
			wsService.HandleAsk(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

func buildEmbedder(cfg *config.Config) *service.EmbeddingService {
	if cfg.OpenAI.UseAzure {
		return service.NewAzureEmbeddingService(
			cfg.OpenAI.Endpoint,
			cfg.OpenAI.APIKey,
			cfg.OpenAI.EmbeddingModel,
			cfg.OpenAI.APIVersion,
			cfg.Processing.EmbeddingBatchSize,
		)
	}
	return service.NewEmbeddingService(
		cfg.OpenAI.Endpoint,
		cfg.OpenAI.APIKey,
		cfg.OpenAI.EmbeddingModel,
		cfg.Processing.EmbeddingBatchSize,
	)
}

func buildAIService(ctx context.Context, cfg *config.Config) (service.AIService, error) {
	switch cfg.Chat.Provider {
	case "gemini":
		return service.NewGeminiService(ctx, cfg.Chat.GeminiAPIKey, cfg.Chat.GeminiModel)
	case "openai", "":
		return service.NewOpenAIService(cfg.Chat.Endpoint, cfg.Chat.APIKey, cfg.Chat.Model), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Chat.Provider)
	}
}
