// Package history records finished searches and serves them back over the API.
package history

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "github.com/BaskovKonstantin/EstateFinder/internal/http"
	"github.com/BaskovKonstantin/EstateFinder/internal/history/handler"
	"github.com/BaskovKonstantin/EstateFinder/internal/history/repository"
	"github.com/BaskovKonstantin/EstateFinder/internal/history/service"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// Module wires the search history HTTP routes.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{svc: svc, handler: handler.New(svc)}
}

func (m *Module) Name() string {
	return "history"
}

// Service exposes the recorder for the search pipeline.
func (m *Module) Service() *service.Service {
	return m.svc
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/searches", m.handler.List)
}

var _ apphttp.Module = (*Module)(nil)
