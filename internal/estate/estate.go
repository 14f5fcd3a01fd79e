// Package estate defines the real estate record shared by the crawler,
// the scoring engine and the search API.
package estate

import (
	"encoding/json"
	"fmt"
)

// Coords is a latitude/longitude pair. It marshals as a 2-element
// [lat, lon] array, which is what the map widget on the search page expects.
type Coords struct {
	Lat float64
	Lon float64
}

// MarshalJSON implements json.Marshaler.
func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coords) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coords: %w", err)
	}
	c.Lat = pair[0]
	c.Lon = pair[1]
	return nil
}

// POI is one nearby OpenStreetMap object (node, way or relation).
type POI struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat,omitempty"`
	Lon  float64           `json:"lon,omitempty"`
	Tags map[string]string `json:"tags"`
}

// Record is one real estate offer. Optional scalars are pointers so that
// absent values stay out of the serialized form entirely.
type Record struct {
	// Identity
	ID      string  `json:"id"`
	Address string  `json:"address"`
	Coords  *Coords `json:"coords,omitempty"`

	// Price
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	PricePerSqm *float64 `json:"price_per_sqm,omitempty"`

	// Layout
	Rooms       *int     `json:"rooms,omitempty"`
	TotalArea   *float64 `json:"total_area,omitempty"`
	LivingArea  *float64 `json:"living_area,omitempty"`
	KitchenArea *float64 `json:"kitchen_area,omitempty"`

	// Building
	Floor            *int     `json:"floor,omitempty"`
	FloorsTotal      *int     `json:"floors_total,omitempty"`
	YearBuilt        *int     `json:"year_built,omitempty"`
	BuildingMaterial string   `json:"building_material,omitempty"`
	CeilingHeight    *float64 `json:"ceiling_height,omitempty"`

	// Comfort
	Bathrooms   *int   `json:"bathrooms,omitempty"`
	IsFurnished *bool  `json:"is_furnished,omitempty"`
	Renovation  string `json:"renovation,omitempty"`
	WindowView  string `json:"window_view,omitempty"`

	// Infrastructure
	TransportNearby map[string]int `json:"transport_nearby,omitempty"`

	// Contacts
	ContactPhone string `json:"contact_phone,omitempty"`

	// Media
	Photos []string `json:"photos,omitempty"`
	Videos []string `json:"videos,omitempty"`

	// Misc
	SellerType    string         `json:"seller_type,omitempty"`
	ListingStatus string         `json:"listing_status,omitempty"`
	Extra         map[string]any `json:"extra_attributes,omitempty"`

	// Enrichment data. Never serialized to clients: the nearby object
	// lists are large and only feed the scoring stage.
	NearbyObjects []POI            `json:"-"`
	NearbyGrouped map[string][]POI `json:"-"`
}

// HasCoords reports whether the record can be placed on the map.
func (r *Record) HasCoords() bool {
	return r.Coords != nil
}

// PricePerArea returns price divided by total area, or 0 when either is missing.
func (r *Record) PricePerArea() float64 {
	if r.Price == nil || r.TotalArea == nil || *r.TotalArea == 0 {
		return 0
	}
	return *r.Price / *r.TotalArea
}

// Flatten serializes the record to the flat map the search response carries,
// merging the given score fields. Heavy enrichment fields are already
// excluded via `json:"-"`.
func (r *Record) Flatten(scores map[string]float64) (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("flatten estate %s: %w", r.ID, err)
	}

	flat := make(map[string]any)
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("flatten estate %s: %w", r.ID, err)
	}

	for name, value := range scores {
		flat[name] = value
	}
	return flat, nil
}

// Primary tag keys, in priority order, used to group nearby objects.
var primaryTagKeys = []string{
	"amenity", "shop", "building", "highway",
	"leisure", "tourism", "public_transport", "office",
}

// PrimaryTag classifies a POI by its first matching primary tag,
// e.g. "amenity=cafe". Untagged or unmatched objects land in "other".
func PrimaryTag(tags map[string]string) string {
	for _, key := range primaryTagKeys {
		if value, ok := tags[key]; ok {
			return key + "=" + value
		}
	}
	return "other"
}

// GroupPOIs groups nearby objects by their primary tag.
func GroupPOIs(objects []POI) map[string][]POI {
	grouped := make(map[string][]POI)
	for _, obj := range objects {
		tag := PrimaryTag(obj.Tags)
		grouped[tag] = append(grouped[tag], obj)
	}
	return grouped
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v. Convenience for building records.
func Int(v int) *int { return &v }

// Bool returns a pointer to v. Convenience for building records.
func Bool(v bool) *bool { return &v }
