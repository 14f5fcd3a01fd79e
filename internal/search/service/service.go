// Package service orchestrates the search pipeline: crawl the catalog,
// parse offers, enrich them with coordinates and nearby objects, score the
// batch and cache the result.
package service

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/cian"
	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

// offerConcurrency bounds parallel offer-page fetches per catalog page.
// The politeness limiter in the fetcher still paces the actual requests.
const offerConcurrency = 4

// PageFetcher loads one page of HTML.
type PageFetcher interface {
	Get(ctx context.Context, pageURL string) (string, error)
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*estate.Coords, error)
}

// POIFinder loads nearby OpenStreetMap objects around a point.
type POIFinder interface {
	Nearby(ctx context.Context, coords estate.Coords, radius int) ([]estate.POI, error)
}

// RefreshEnqueuer schedules a background cache refresh.
type RefreshEnqueuer interface {
	EnqueueSearchRefresh(ctx context.Context, cacheKey, rawQuery string) error
}

// HistoryRecorder persists one finished search for the history endpoint.
type HistoryRecorder interface {
	Record(ctx context.Context, cacheKey, query string, count int, cacheHit bool, took time.Duration)
}

// Config is the slice of application config the search service needs.
type Config interface {
	GetCianBaseURL() string
	GetCacheTTL() time.Duration
}

// Service runs searches. The enqueuer and recorder are optional: without
// Redis there are no background refreshes, without Postgres no history.
type Service struct {
	cfg      Config
	log      *logger.Logger
	v        *validator.Validator
	fetcher  PageFetcher
	geocoder Geocoder
	pois     POIFinder
	scorer   *scoring.Scorer
	store    cache.Store
	enqueuer RefreshEnqueuer
	history  HistoryRecorder
}

func New(
	cfg Config,
	log *logger.Logger,
	v *validator.Validator,
	fetcher PageFetcher,
	geocoder Geocoder,
	pois POIFinder,
	scorer *scoring.Scorer,
	store cache.Store,
	enqueuer RefreshEnqueuer,
	history HistoryRecorder,
) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		v:        v,
		fetcher:  fetcher,
		geocoder: geocoder,
		pois:     pois,
		scorer:   scorer,
		store:    store,
		enqueuer: enqueuer,
		history:  history,
	}
}

// Search serves a search request, from cache when possible. A stale cache
// hit is still served immediately, with a background refresh scheduled so
// the next request gets fresh data.
func (s *Service) Search(ctx context.Context, req *transport.SearchRequest) (*transport.SearchResponse, error) {
	started := time.Now()

	key, err := s.cacheKey(req)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.Get(ctx, key)
	if err != nil {
		// A broken cache backend degrades to a live search.
		s.log.Error("cache_get_failed", "error", err.Error())
	}
	if entry != nil {
		if entry.Stale(s.cfg.GetCacheTTL()) && s.enqueuer != nil {
			if err := s.enqueuer.EnqueueSearchRefresh(ctx, key, req.RawQuery); err != nil {
				s.log.Error("refresh_enqueue_failed", "error", err.Error())
			}
		}
		s.record(ctx, key, req.RawQuery, entry.Count, true, time.Since(started))
		s.log.SearchCompleted(key, entry.Count, true, float64(time.Since(started).Milliseconds()))
		return &transport.SearchResponse{Count: entry.Count, Estates: entry.Estates}, nil
	}

	entry, err = s.runPipeline(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, key, entry); err != nil {
		s.log.Error("cache_set_failed", "error", err.Error())
	}
	s.record(ctx, key, req.RawQuery, entry.Count, false, time.Since(started))
	s.log.SearchCompleted(key, entry.Count, false, float64(time.Since(started).Milliseconds()))

	return &transport.SearchResponse{Count: entry.Count, Estates: entry.Estates}, nil
}

// Refresh re-runs a search from its raw query string, bypassing the cache
// read, and overwrites the stored entry.
func (s *Service) Refresh(ctx context.Context, rawQuery string) error {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "malformed refresh query", err)
	}

	req, err := transport.ParseSearchRequest(values, s.v)
	if err != nil {
		return err
	}

	key, err := s.cacheKey(req)
	if err != nil {
		return err
	}

	entry, err := s.runPipeline(ctx, req)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, entry)
}

func (s *Service) cacheKey(req *transport.SearchRequest) (string, error) {
	key, err := cache.Key(cache.KeyParams{
		Variant:   req.Variant,
		MaxPages:  req.MaxPages,
		Radius:    req.Radius,
		Limit:     req.Limit,
		VenueType: req.VenueType,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "derive cache key", err)
	}
	return key, nil
}

func (s *Service) record(ctx context.Context, key, query string, count int, cacheHit bool, took time.Duration) {
	if s.history != nil {
		s.history.Record(ctx, key, query, count, cacheHit, took)
	}
}

// runPipeline crawls the catalog and produces a finished cache entry.
func (s *Service) runPipeline(ctx context.Context, req *transport.SearchRequest) (*cache.Entry, error) {
	const op = "search.runPipeline"

	urls, err := cian.CatalogURLs(req.Variant, s.cfg.GetCianBaseURL(), req.MaxPages)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err).WithOp(op)
	}

	seen := make(map[string]bool)
	estates := make([]*estate.Record, 0, req.Limit)
	totalPages := req.MaxPages

	for page, pageURL := range urls {
		if len(estates) >= req.Limit || page >= totalPages {
			break
		}

		html, err := s.fetcher.Get(ctx, pageURL)
		if err != nil {
			// One unreadable catalog page must not kill the search.
			continue
		}
		if page == 0 {
			// The catalog may have fewer pages than requested.
			if reported := cian.ExtractTotalPages(html); reported < totalPages {
				totalPages = reported
			}
		}

		links, err := cian.ExtractAdLinks(html)
		if err != nil {
			continue
		}

		fresh := make([]string, 0, len(links))
		for _, link := range links {
			if seen[link] {
				continue
			}
			seen[link] = true
			fresh = append(fresh, link)
		}

		// Failed offers free up slots, so keep drawing from the page's
		// remaining links until the limit is met or they run out.
		for len(fresh) > 0 && len(estates) < req.Limit {
			n := min(req.Limit-len(estates), len(fresh))
			estates = append(estates, s.fetchOffers(ctx, fresh[:n], req.Radius)...)
			fresh = fresh[n:]
		}
	}

	if len(estates) == 0 {
		return nil, apperr.Upstream("could not fetch a single listing").WithOp(op)
	}

	stats := scoring.ComputeStats(estates)

	flats := make([]map[string]any, 0, len(estates))
	for _, est := range estates {
		scores := s.scorer.Evaluate(est, stats, req.VenueType)
		flat, err := est.Flatten(scores)
		if err != nil {
			s.log.Error("flatten_failed", "estate_id", est.ID, "error", err.Error())
			continue
		}
		flats = append(flats, flat)
	}

	return &cache.Entry{
		Count:   len(flats),
		Estates: flats,
		SavedAt: time.Now(),
	}, nil
}

// fetchOffers loads and parses a batch of offer pages concurrently. Every
// failure is logged and skipped; partial results are better than none.
func (s *Service) fetchOffers(ctx context.Context, links []string, radius int) []*estate.Record {
	results := make([]*estate.Record, len(links))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(offerConcurrency)

	for i, link := range links {
		g.Go(func() error {
			html, err := s.fetcher.Get(gctx, link)
			if err != nil {
				return nil
			}

			rec, err := cian.ParseOffer(html)
			if err != nil {
				s.log.Error("offer_parse_failed", "url", link, "error", err.Error())
				return nil
			}
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}

			s.enrich(gctx, rec, radius)

			mu.Lock()
			results[i] = rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	records := make([]*estate.Record, 0, len(links))
	for _, rec := range results {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// enrich fills in coordinates and nearby objects. Enrichment is best
// effort: an estate without them still makes it into the response, it just
// scores neutrally on location.
func (s *Service) enrich(ctx context.Context, rec *estate.Record, radius int) {
	if !rec.HasCoords() && rec.Address != "" {
		coords, err := s.geocoder.Geocode(ctx, rec.Address)
		if err != nil {
			s.log.Warn("geocode_failed", "estate_id", rec.ID, "error", err.Error())
		} else {
			rec.Coords = coords
		}
	}

	if rec.HasCoords() {
		objects, err := s.pois.Nearby(ctx, *rec.Coords, radius)
		if err != nil {
			s.log.Warn("poi_lookup_failed", "estate_id", rec.ID, "error", err.Error())
			return
		}
		rec.NearbyObjects = objects
		rec.NearbyGrouped = estate.GroupPOIs(objects)
	}
}
