package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/rag-be/types"
)

// Answerer is the slice of the RAG service the API exposes.
type Answerer interface {
	AnswerQuestion(ctx context.Context, req types.AskRequest) (*types.AskResponse, error)
	SearchChunks(ctx context.Context, req types.SearchRequest) (*types.SearchChunksResponse, error)
}

type AskHandler interface {
	HandleAsk(c *gin.Context)
	HandleSearch(c *gin.Context)
}

type askHandler struct {
	rag Answerer
}

func NewAskHandler(rag Answerer) AskHandler {
	return &askHandler{
		rag: rag,
	}
}

func (h *askHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "question must not be empty",
		})
		return
	}

	resp, err := h.rag.AnswerQuestion(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}

func (h *askHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "question must not be empty",
		})
		return
	}

	resp, err := h.rag.SearchChunks(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}
