// Package search wires the search pipeline into the HTTP server.
package search

import (
	apphttp "github.com/BaskovKonstantin/EstateFinder/internal/http"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/handler"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

// Module wires the search HTTP routes.
type Module struct {
	handler *handler.Handler
}

func NewModule(svc *service.Service, v *validator.Validator) *Module {
	return &Module{handler: handler.New(svc, v)}
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/search", m.handler.Search)
}

var _ apphttp.Module = (*Module)(nil)
