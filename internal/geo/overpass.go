package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// POIClient loads tagged OpenStreetMap objects around a point from an
// Overpass API endpoint.
type POIClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	log       *logger.Logger
	baseURL   string
	userAgent string
}

func NewPOIClient(cfg config.GeoConfig, log *logger.Logger) *POIClient {
	return &POIClient{
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		log:       log,
		baseURL:   cfg.GetOverpassURL(),
		userAgent: cfg.GetGeoUserAgent(),
	}
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Tags   map[string]string `json:"tags"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// Nearby returns all tagged nodes, ways and relations within radius meters
// of the point. Untagged elements carry no classification value and are
// dropped.
func (p *POIClient) Nearby(ctx context.Context, coords estate.Coords, radius int) ([]estate.POI, error) {
	const op = "geo.Nearby"

	query := fmt.Sprintf(`[out:json];
(
  node(around:%d,%f,%f);
  way(around:%d,%f,%f);
  relation(around:%d,%f,%f);
);
out center;`,
		radius, coords.Lat, coords.Lon,
		radius, coords.Lat, coords.Lon,
		radius, coords.Lat, coords.Lon)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "poi lookup cancelled", err).WithOp(op)
	}

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "build overpass request", err).WithOp(op)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.UpstreamError("overpass", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "overpass request failed", err).WithOp(op)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperr.Upstream("too many requests to the overpass api, try again later").WithOp(op)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		p.log.UpstreamError("overpass", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "overpass request failed", err).WithOp(op)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "malformed overpass response", err).WithOp(op)
	}

	objects := make([]estate.POI, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		if len(el.Tags) == 0 {
			continue
		}
		poi := estate.POI{
			Type: el.Type,
			ID:   el.ID,
			Lat:  el.Lat,
			Lon:  el.Lon,
			Tags: el.Tags,
		}
		if el.Center != nil {
			poi.Lat = el.Center.Lat
			poi.Lon = el.Center.Lon
		}
		objects = append(objects, poi)
	}
	return objects, nil
}
