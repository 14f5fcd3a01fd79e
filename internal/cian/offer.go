package cian

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/phone"

	"github.com/PuerkitoBio/goquery"
)

var (
	reNonDigits = regexp.MustCompile(`[^0-9]`)
	// The verbose meta description carries price and marketing text after
	// the location: cut at the price sentence and drop leading sales verbs.
	reDescriptionPriceTail = regexp.MustCompile(`\.\s*Цена`)
	reDescriptionMarketing = regexp.MustCompile(`(?i)^\s*[\W_\d»«➜]*\s*(Куп(ите|ить)|Прод(ам|айте|ажа))[^А-ЯA-Z]*`)
)

// Top-level embedded JSON keys that are either mapped to dedicated record
// fields or too heavy to carry as extra attributes.
var excludedExtraKeys = map[string]bool{
	"factoids":     true,
	"priceHistory": true,
	"photos":       true,
	"videos":       true,
	"building":     true,
	"priceInfo":    true,
	"undergrounds": true,
	"phones":       true,
	"coordinates":  true,
}

// ParseOffer builds an estate record from an offer page. Field values come
// from the embedded JSON state blob where possible, with meta tags and the
// rendered price element as fallbacks.
func ParseOffer(html string) (*estate.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse offer page: %w", err)
	}

	data := extractEmbeddedJSON(html)
	if data == nil {
		data = map[string]any{}
	}

	rec := &estate.Record{}

	// Identity
	rec.ID, _ = doc.Find(`meta[name="ca-offer-id"]`).Attr("content")
	rec.Address = extractAddress(doc, data)

	// Price
	if priceText := doc.Find(`[data-testid="price-amount"]`).First().Text(); priceText != "" {
		digits := reNonDigits.ReplaceAllString(priceText, "")
		if digits != "" {
			if price, err := strconv.ParseFloat(digits, 64); err == nil {
				rec.Price = estate.Float(price)
				rec.Currency = "RUB"
			}
		}
	}
	if v, ok := toFloat(dig(data, "priceInfo", "pricePerSquareValue")); ok {
		rec.PricePerSqm = estate.Float(v)
	}

	// Layout
	if v, ok := digInt(data, "roomsCount"); ok {
		rec.Rooms = estate.Int(v)
	}
	if v, ok := toFloat(dig(data, "totalArea")); ok {
		rec.TotalArea = estate.Float(v)
	}
	if v, ok := toFloat(dig(data, "livingArea")); ok {
		rec.LivingArea = estate.Float(v)
	}
	if v, ok := toFloat(dig(data, "kitchenArea")); ok {
		rec.KitchenArea = estate.Float(v)
	}

	// Building
	if v, ok := digInt(data, "floorNumber"); ok {
		rec.Floor = estate.Int(v)
	}
	if v, ok := digInt(data, "building", "floorsCount"); ok {
		rec.FloorsTotal = estate.Int(v)
	}
	if v, ok := digInt(data, "building", "buildYear"); ok {
		rec.YearBuilt = estate.Int(v)
	}
	rec.BuildingMaterial = digString(data, "building", "materialType")
	if v, ok := toFloat(dig(data, "building", "ceilingHeight")); ok {
		rec.CeilingHeight = estate.Float(v)
	}

	// Comfort
	separate, _ := digInt(data, "separateWcsCount")
	combined, _ := digInt(data, "combinedWcsCount")
	if separate+combined > 0 {
		rec.Bathrooms = estate.Int(separate + combined)
	}
	if furnished, ok := dig(data, "hasFurniture").(bool); ok {
		rec.IsFurnished = estate.Bool(furnished)
	}
	rec.Renovation = digString(data, "repairType")
	rec.WindowView = digString(data, "windowsViewType")

	// Transport: the nearest underground station
	if stations, ok := dig(data, "undergrounds").([]any); ok && len(stations) > 0 {
		if station, ok := stations[0].(map[string]any); ok {
			if name, ok := station["name"].(string); ok && name != "" {
				travel, _ := toFloat(station["travelTime"])
				rec.TransportNearby = map[string]int{name: int(travel)}
			}
		}
	}

	// Contacts
	if phones, ok := dig(data, "phones").([]any); ok && len(phones) > 0 {
		if entry, ok := phones[0].(map[string]any); ok {
			raw := fmt.Sprintf("%v %v", entry["countryCode"], entry["number"])
			rec.ContactPhone = phone.NormalizeE164(raw)
		}
	}

	// Media
	if photos, ok := dig(data, "photos").([]any); ok {
		for _, item := range photos {
			if photo, ok := item.(map[string]any); ok {
				if u, ok := photo["fullUrl"].(string); ok && u != "" {
					rec.Photos = append(rec.Photos, u)
				}
			}
		}
	}
	if videos, ok := dig(data, "videos").([]any); ok {
		for _, item := range videos {
			if video, ok := item.(map[string]any); ok {
				if u, ok := video["url"].(string); ok && u != "" {
					rec.Videos = append(rec.Videos, u)
				}
			}
		}
	}

	// Coordinates
	if lat, ok := toFloat(dig(data, "coordinates", "lat")); ok {
		if lon, ok := toFloat(dig(data, "coordinates", "lng")); ok {
			rec.Coords = &estate.Coords{Lat: lat, Lon: lon}
		}
	}

	// Everything else rides along as extra attributes.
	extra := make(map[string]any)
	for key, value := range data {
		if !excludedExtraKeys[key] {
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		rec.Extra = extra
	}

	return rec, nil
}

// extractAddress prefers the concise og:description meta, then a cleaned
// verbose description meta, then address parts from the embedded JSON.
func extractAddress(doc *goquery.Document, data map[string]any) string {
	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && content != "" {
		text := content
		if loc := reDescriptionPriceTail.FindStringIndex(text); loc != nil {
			text = text[:loc[0]]
		}
		text = reDescriptionMarketing.ReplaceAllString(text, "")
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}

	parts := make([]string, 0, 4)
	for _, key := range []string{"city", "subzone", "street", "houseNumber"} {
		if part := digString(data, "geo", key); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// toFloat accepts the numeric shapes the embedded JSON uses: plain numbers
// and numeric strings.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
