// Package handler exposes the search pipeline over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/httpkit"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

type Handler struct {
	svc *service.Service
	v   *validator.Validator
}

func New(svc *service.Service, v *validator.Validator) *Handler {
	return &Handler{svc: svc, v: v}
}

// Search handles GET /search. Every query parameter that is not a pipeline
// control becomes part of the catalog filter.
func (h *Handler) Search(c *gin.Context) {
	req, err := transport.ParseSearchRequest(c.Request.URL.Query(), h.v)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusOK, resp)
}
