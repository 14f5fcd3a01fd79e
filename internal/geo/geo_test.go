package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

func geoConfig(nominatimURL, overpassURL string) *config.Config {
	return &config.Config{
		NominatimURL: nominatimURL,
		OverpassURL:  overpassURL,
		GeoUserAgent: "test-geocoder",
	}
}

func TestGeocodeFallsThroughVariants(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		// Only the street-house variant resolves.
		if q == "улица Тверская, 7" {
			w.Write([]byte(`[{"lat": "55.76", "lon": "37.61"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewGeocoder(geoConfig(srv.URL, ""), logger.New("development"))

	coords, err := g.Geocode(context.Background(), "ул. Тверская, 7, Москва")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if coords.Lat != 55.76 || coords.Lon != 37.61 {
		t.Fatalf("unexpected coords %+v", coords)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 variant queries, got %v", queries)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewGeocoder(geoConfig(srv.URL, ""), logger.New("development"))

	_, err := g.Geocode(context.Background(), "Тверская, 7")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGeocodeAbortsOnServiceError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGeocoder(geoConfig(srv.URL, ""), logger.New("development"))

	_, err := g.Geocode(context.Background(), "ул. Тверская, 7, Москва")
	if apperr.GetKind(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before aborting, got %d", calls)
	}
}

func TestNearbyParsesTaggedElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("data") == "" {
			t.Error("expected an overpass query in the data field")
		}
		w.Write([]byte(`{"elements": [
			{"type": "node", "id": 1, "lat": 55.7, "lon": 37.6, "tags": {"amenity": "cafe"}},
			{"type": "node", "id": 2, "lat": 55.7, "lon": 37.6},
			{"type": "way", "id": 3, "center": {"lat": 55.71, "lon": 37.62}, "tags": {"shop": "bakery"}}
		]}`))
	}))
	defer srv.Close()

	p := NewPOIClient(geoConfig("", srv.URL), logger.New("development"))

	objects, err := p.Nearby(context.Background(), estate.Coords{Lat: 55.7, Lon: 37.6}, 100)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected untagged elements dropped, got %d objects", len(objects))
	}
	if objects[0].Tags["amenity"] != "cafe" {
		t.Fatalf("unexpected first object %+v", objects[0])
	}
	if objects[1].Lat != 55.71 {
		t.Fatalf("expected way coords from center, got %+v", objects[1])
	}
}

func TestNearbyTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewPOIClient(geoConfig("", srv.URL), logger.New("development"))

	_, err := p.Nearby(context.Background(), estate.Coords{Lat: 55.7, Lon: 37.6}, 100)
	if apperr.GetKind(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
