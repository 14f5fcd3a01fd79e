package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// Geocoder resolves addresses through a Nominatim instance. The public
// OSM instance allows at most one request per second, which the limiter
// enforces across concurrent searches.
type Geocoder struct {
	client    *http.Client
	limiter   *rate.Limiter
	log       *logger.Logger
	baseURL   string
	userAgent string
}

func NewGeocoder(cfg config.GeoConfig, log *logger.Logger) *Geocoder {
	return &Geocoder{
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		log:       log,
		baseURL:   cfg.GetNominatimURL(),
		userAgent: cfg.GetGeoUserAgent(),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address, trying progressively simpler query variants.
// A service failure aborts the variant loop: retrying a dead upstream with
// a different query is pointless.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*estate.Coords, error) {
	const op = "geo.Geocode"

	if address == "" {
		return nil, apperr.BadRequest("empty address").WithOp(op)
	}

	for _, query := range QueryVariants(address) {
		coords, err := g.lookup(ctx, query)
		if err != nil {
			g.log.UpstreamError("nominatim", err)
			return nil, apperr.Wrap(apperr.KindUpstream, "geocoding service unavailable", err).WithOp(op)
		}
		if coords != nil {
			return coords, nil
		}
	}

	return nil, apperr.NotFound(fmt.Sprintf("no coordinates found for address: %s", address)).WithOp(op)
}

func (g *Geocoder) lookup(ctx context.Context, query string) (*estate.Coords, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("accept-language", "ru")

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed latitude %q", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed longitude %q", results[0].Lon)
	}

	return &estate.Coords{Lat: lat, Lon: lon}, nil
}
