package estate

import (
	"encoding/json"
	"testing"
)

func TestCoordsMarshalAsPair(t *testing.T) {
	rec := Record{
		ID:      "1",
		Address: "Nevsky 1",
		Coords:  &Coords{Lat: 59.93, Lon: 30.33},
	}

	raw, err := json.Marshal(&rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	pair, ok := decoded["coords"].([]any)
	if !ok {
		t.Fatalf("expected coords array, got %T", decoded["coords"])
	}
	if len(pair) != 2 || pair[0].(float64) != 59.93 || pair[1].(float64) != 30.33 {
		t.Fatalf("expected [59.93 30.33], got %v", pair)
	}
}

func TestCoordsUnmarshalRoundTrip(t *testing.T) {
	var c Coords
	if err := json.Unmarshal([]byte("[55.75, 37.61]"), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Lat != 55.75 || c.Lon != 37.61 {
		t.Fatalf("expected 55.75/37.61, got %v/%v", c.Lat, c.Lon)
	}
}

func TestFlattenMergesScoresAndOmitsHeavyFields(t *testing.T) {
	rec := Record{
		ID:      "42",
		Address: "Nevsky 1",
		Price:   Float(12_000_000),
		NearbyObjects: []POI{
			{Type: "node", ID: 1, Tags: map[string]string{"amenity": "cafe"}},
		},
		NearbyGrouped: map[string][]POI{
			"amenity=cafe": {{Type: "node", ID: 1}},
		},
	}

	flat, err := rec.Flatten(map[string]float64{
		"price_score":     61.5,
		"composite_score": 55.0,
	})
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	if flat["id"] != "42" {
		t.Fatalf("expected id 42, got %v", flat["id"])
	}
	if flat["price_score"] != 61.5 {
		t.Fatalf("expected price_score 61.5, got %v", flat["price_score"])
	}
	if _, ok := flat["nearby_objects"]; ok {
		t.Fatal("nearby_objects must not be serialized")
	}
	if _, ok := flat["rooms"]; ok {
		t.Fatal("absent optional fields must be omitted")
	}
	if _, ok := flat["address"]; !ok {
		t.Fatal("address must always be present")
	}
}

func TestPrimaryTagPriority(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"amenity wins over shop", map[string]string{"shop": "bakery", "amenity": "cafe"}, "amenity=cafe"},
		{"shop", map[string]string{"shop": "bakery"}, "shop=bakery"},
		{"public transport", map[string]string{"public_transport": "platform"}, "public_transport=platform"},
		{"unmatched", map[string]string{"name": "whatever"}, "other"},
		{"empty", nil, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryTag(tt.tags); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPricePerArea(t *testing.T) {
	rec := Record{Price: Float(100), TotalArea: Float(50)}
	if got := rec.PricePerArea(); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}

	empty := Record{}
	if got := empty.PricePerArea(); got != 0 {
		t.Fatalf("expected 0 for missing fields, got %v", got)
	}
}
