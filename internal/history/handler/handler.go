// Package handler exposes the search history listing over HTTP.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BaskovKonstantin/EstateFinder/internal/history/service"
	"github.com/BaskovKonstantin/EstateFinder/internal/history/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/httpkit"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/searches.
func (h *Handler) List(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.HandleError(c, apperr.Validation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	summaries, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ListResponse{Searches: summaries})
}
