package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/cian"
	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

type emptyFetcher struct{}

func (emptyFetcher) Get(context.Context, string) (string, error) {
	return "", apperr.Upstream("unreachable")
}

type noopGeocoder struct{}

func (noopGeocoder) Geocode(context.Context, string) (*estate.Coords, error) {
	return nil, apperr.NotFound("no match")
}

type noopPOIFinder struct{}

func (noopPOIFinder) Nearby(context.Context, estate.Coords, int) ([]estate.POI, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CianBaseURL: cian.DefaultBaseURL,
		CacheDir:    t.TempDir(),
		CacheTTL:    time.Hour,
	}

	store, err := cache.NewFileStore(cfg)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	scorer, err := scoring.New(cfg)
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}

	v := validator.New()
	svc := service.New(cfg, logger.New("development"), v,
		emptyFetcher{}, noopGeocoder{}, noopPOIFinder{}, scorer, store, nil, nil)

	engine := gin.New()
	engine.GET("/search", New(svc, v).Search)
	return engine
}

func TestSearchEndpointRejectsInvalidFilters(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search?deal_type=swap", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected an error message, got %v", body)
	}
}

func TestSearchEndpointReturnsBadGatewayWithoutListings(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search?deal_type=sale&region=2", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 when the crawl yields nothing, got %d: %s", w.Code, w.Body.String())
	}
}
