package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/cian"
	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Get(_ context.Context, pageURL string) (string, error) {
	f.calls++
	html, ok := f.pages[pageURL]
	if !ok {
		return "", apperr.Upstream("no such page")
	}
	return html, nil
}

type fakeGeocoder struct{ calls int }

func (g *fakeGeocoder) Geocode(context.Context, string) (*estate.Coords, error) {
	g.calls++
	return &estate.Coords{Lat: 55.75, Lon: 37.61}, nil
}

type fakePOIFinder struct{}

func (fakePOIFinder) Nearby(context.Context, estate.Coords, int) ([]estate.POI, error) {
	return []estate.POI{
		{Type: "node", ID: 1, Tags: map[string]string{"amenity": "cafe"}},
	}, nil
}

type fakeEnqueuer struct {
	keys []string
}

func (e *fakeEnqueuer) EnqueueSearchRefresh(_ context.Context, cacheKey, _ string) error {
	e.keys = append(e.keys, cacheKey)
	return nil
}

type recordedSearch struct {
	cacheKey string
	count    int
	cacheHit bool
}

type fakeHistory struct {
	records []recordedSearch
}

func (h *fakeHistory) Record(_ context.Context, cacheKey, _ string, count int, cacheHit bool, _ time.Duration) {
	h.records = append(h.records, recordedSearch{cacheKey: cacheKey, count: count, cacheHit: cacheHit})
}

func offerHTML(id string) string {
	return fmt.Sprintf(`<html><head>
		<meta name="ca-offer-id" content="%s">
		<meta property="og:description" content="Москва, Тверская, %s">
		</head><body>
		<span data-testid="price-amount">10 000 000</span>
		<script>{"factoids": [], "totalArea": "50"}</script>
		</body></html>`, id, id)
}

type fixture struct {
	svc      *Service
	fetcher  *fakeFetcher
	geocoder *fakeGeocoder
	enqueuer *fakeEnqueuer
	history  *fakeHistory
	store    cache.Store
	cfg      *config.Config
}

func newFixture(t *testing.T, listings int) *fixture {
	t.Helper()

	cfg := &config.Config{
		CianBaseURL: cian.DefaultBaseURL,
		CacheDir:    t.TempDir(),
		CacheTTL:    time.Hour,
	}

	variant := cian.Variant{"deal_type": "sale", "region": 2}
	catalogURL, err := cian.CatalogURL(variant, cfg.CianBaseURL, 1)
	if err != nil {
		t.Fatalf("catalog url: %v", err)
	}

	pages := map[string]string{}
	catalog := "<html><body>"
	for i := 1; i <= listings; i++ {
		link := fmt.Sprintf("https://www.cian.ru/sale/flat/%d/", i)
		catalog += fmt.Sprintf(`<a href="%s">ad</a>`, link)
		pages[link] = offerHTML(fmt.Sprint(i))
	}
	catalog += "</body></html>"
	pages[catalogURL] = catalog

	fetcher := &fakeFetcher{pages: pages}
	geocoder := &fakeGeocoder{}
	enqueuer := &fakeEnqueuer{}
	history := &fakeHistory{}

	store, err := cache.NewFileStore(cfg)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	scorer, err := scoring.New(cfg)
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}

	svc := New(cfg, logger.New("development"), validator.New(),
		fetcher, geocoder, fakePOIFinder{}, scorer, store, enqueuer, history)

	return &fixture{
		svc:      svc,
		fetcher:  fetcher,
		geocoder: geocoder,
		enqueuer: enqueuer,
		history:  history,
		store:    store,
		cfg:      cfg,
	}
}

func parseRequest(t *testing.T, rawQuery string) *transport.SearchRequest {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	req, err := transport.ParseSearchRequest(values, validator.New())
	if err != nil {
		t.Fatalf("parse request: %v", err)
	}
	return req
}

func TestSearchRunsPipelineAndCaches(t *testing.T) {
	fx := newFixture(t, 2)
	req := parseRequest(t, "deal_type=sale&region=2")

	resp, err := fx.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Count != 2 || len(resp.Estates) != 2 {
		t.Fatalf("expected 2 estates, got %+v", resp)
	}

	flat := resp.Estates[0]
	if flat["id"] != "1" {
		t.Fatalf("unexpected first estate %v", flat)
	}
	for _, field := range []string{"price_score", "location_score", "composite_score"} {
		if _, ok := flat[field]; !ok {
			t.Fatalf("missing score field %s in %v", field, flat)
		}
	}
	if _, ok := flat["coords"]; !ok {
		t.Fatal("expected geocoded coords in the flattened estate")
	}

	// Second identical search is served from cache: no further fetches.
	fetches := fx.fetcher.calls
	resp2, err := fx.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("cached search: %v", err)
	}
	if resp2.Count != 2 {
		t.Fatalf("unexpected cached response %+v", resp2)
	}
	if fx.fetcher.calls != fetches {
		t.Fatalf("cached search must not fetch, got %d extra calls", fx.fetcher.calls-fetches)
	}

	if len(fx.history.records) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(fx.history.records))
	}
	if fx.history.records[0].cacheHit || !fx.history.records[1].cacheHit {
		t.Fatalf("expected miss then hit, got %+v", fx.history.records)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	fx := newFixture(t, 5)
	req := parseRequest(t, "deal_type=sale&region=2&limit=3")

	resp, err := fx.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected the limit to cap results at 3, got %d", resp.Count)
	}
}

func TestSearchRefillsLimitAfterFailedOffers(t *testing.T) {
	fx := newFixture(t, 4)
	// One offer page inside the first batch is unreachable; the slot it
	// frees must be filled from the page's remaining links.
	delete(fx.fetcher.pages, "https://www.cian.ru/sale/flat/2/")
	req := parseRequest(t, "deal_type=sale&region=2&limit=3")

	resp, err := fx.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected 3 estates after refilling, got %d", resp.Count)
	}
}

func TestSearchFailsUpstreamWithoutListings(t *testing.T) {
	fx := newFixture(t, 0)
	req := parseRequest(t, "deal_type=sale&region=2")

	_, err := fx.svc.Search(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream error for an empty crawl, got %v", err)
	}
}

func TestSearchSchedulesRefreshForStaleEntries(t *testing.T) {
	fx := newFixture(t, 1)
	req := parseRequest(t, "deal_type=sale&region=2")

	key, err := fx.svc.cacheKey(req)
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}

	stale := &cache.Entry{
		Count:   1,
		Estates: []map[string]any{{"id": "old"}},
		SavedAt: time.Now().Add(-45 * time.Minute),
	}
	if err := fx.store.Set(context.Background(), key, stale); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	resp, err := fx.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Estates[0]["id"] != "old" {
		t.Fatal("stale entry must still be served")
	}
	if len(fx.enqueuer.keys) != 1 || fx.enqueuer.keys[0] != key {
		t.Fatalf("expected one refresh for %s, got %v", key, fx.enqueuer.keys)
	}
}

func TestRefreshOverwritesCache(t *testing.T) {
	fx := newFixture(t, 1)
	req := parseRequest(t, "deal_type=sale&region=2")

	key, err := fx.svc.cacheKey(req)
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}

	if err := fx.svc.Refresh(context.Background(), req.RawQuery); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	entry, err := fx.store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil || entry.Count != 1 {
		t.Fatalf("expected refreshed entry, got %+v", entry)
	}
}
