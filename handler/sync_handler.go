package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/rag-be/repository"
	"github.com/tieubaoca/rag-be/types"
)

type SyncHandler interface {
	HandleListRuns(c *gin.Context)
	HandleLatestRun(c *gin.Context)
}

// syncHandler serves sync run history. The repo is nil when MongoDB is not
// configured; the endpoint then reports the feature as unavailable.
type syncHandler struct {
	repo repository.SyncRunRepo
}

func NewSyncHandler(repo repository.SyncRunRepo) SyncHandler {
	return &syncHandler{
		repo: repo,
	}
}

func (h *syncHandler) HandleListRuns(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  "error",
			Message: "sync run history is not configured",
		})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	runs, err := h.repo.ListRuns(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	if runs == nil {
		runs = []types.SyncStats{}
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   runs,
	})
}

func (h *syncHandler) HandleLatestRun(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  "error",
			Message: "sync run history is not configured",
		})
		return
	}

	run, err := h.repo.LatestRun(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "no sync runs recorded yet",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   run,
	})
}
