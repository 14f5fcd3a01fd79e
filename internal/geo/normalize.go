// Package geo resolves estate addresses to coordinates via Nominatim and
// loads nearby OpenStreetMap objects via the Overpass API.
package geo

import (
	"regexp"
	"strings"
)

// Listing addresses carry metro, district and marketing suffixes that
// confuse the geocoder. Everything from the first such marker on is dropped.
var reAddressTail = regexp.MustCompile(`\s+м\.|\s+метро|\s+р-?н|\s+район|\s+•|\(`)

// Common street-type abbreviations, expanded before geocoding. RE2 word
// boundaries are ASCII-only, so the patterns anchor on separators instead.
var addressExpansions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)(^|[\s,])ул\.`), "${1}улица"},
	{regexp.MustCompile(`(?i)(^|[\s,])пер\.`), "${1}переулок"},
	{regexp.MustCompile(`(?i)(^|[\s,])просп\.?`), "${1}проспект"},
	{regexp.MustCompile(`(?i)(^|[\s,])пр-т`), "${1}проспект"},
	{regexp.MustCompile(`(?i)(^|[\s,])наб\.`), "${1}набережная"},
	{regexp.MustCompile(`(?i)(^|[\s,])ш\.`), "${1}шоссе"},
	{regexp.MustCompile(`(?i)(^|[\s,])пл\.`), "${1}площадь"},
}

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reEmptyCommas = regexp.MustCompile(`,\s*,`)
)

// NormalizeAddress expands abbreviations and strips noise that the
// geocoder cannot resolve.
func NormalizeAddress(addr string) string {
	if loc := reAddressTail.FindStringIndex(addr); loc != nil {
		addr = addr[:loc[0]]
	}

	for _, exp := range addressExpansions {
		addr = exp.re.ReplaceAllString(addr, exp.repl)
	}

	addr = reSpaces.ReplaceAllString(addr, " ")
	addr = reEmptyCommas.ReplaceAllString(addr, ",")
	return strings.Trim(addr, " ,")
}

// QueryVariants builds the queries to try against the geocoder, most
// specific first, ending with the raw address as a last resort.
func QueryVariants(addr string) []string {
	clean := NormalizeAddress(addr)
	rawParts := strings.Split(clean, ",")
	parts := make([]string, 0, len(rawParts))
	for _, p := range rawParts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	var variants []string
	if len(parts) >= 3 {
		streetHouse := parts[0] + ", " + parts[1]
		city := parts[2]
		variants = []string{
			clean,
			streetHouse + ", " + city,
			streetHouse,
			addr,
		}
	} else {
		variants = []string{clean, addr}
	}

	seen := make(map[string]bool, len(variants))
	uniq := make([]string, 0, len(variants))
	for _, v := range variants {
		if !seen[v] {
			uniq = append(uniq, v)
			seen[v] = true
		}
	}
	return uniq
}
