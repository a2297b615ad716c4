package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/rag-be/config"
	"github.com/tieubaoca/rag-be/types"
)

type ConfigHandler interface {
	HandleGetConfig(c *gin.Context)
	HandleHealth(c *gin.Context)
}

type configHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) ConfigHandler {
	return &configHandler{
		cfg: cfg,
	}
}

// HandleGetConfig exposes the non-secret parts of the runtime configuration.
func (h *configHandler) HandleGetConfig(c *gin.Context) {
	chatModel := h.cfg.Chat.Model
	if h.cfg.Chat.Provider == "gemini" {
		chatModel = h.cfg.Chat.GeminiModel
	}
	resp := types.ConfigResponse{
		Spaces:         h.cfg.Confluence.Spaces,
		ClassName:      h.cfg.Weaviate.ClassName,
		ChunkSize:      h.cfg.Processing.ChunkSize,
		ChunkOverlap:   h.cfg.Processing.ChunkOverlap,
		TopK:           h.cfg.RAG.TopK,
		EmbeddingModel: h.cfg.OpenAI.EmbeddingModel,
		ChatProvider:   h.cfg.Chat.Provider,
		ChatModel:      chatModel,
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}

func (h *configHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:  "healthy",
		Service: "rag-be",
	})
}
