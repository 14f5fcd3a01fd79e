package cian

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the Cian catalog endpoint.
const DefaultBaseURL = "https://www.cian.ru/cat.php"

// CatalogURL builds a catalog page URL from a validated variant.
// Page 1 carries no pagination parameter; later pages add p=N.
func CatalogURL(variant Variant, baseURL string, page int) (string, error) {
	if err := ValidateVariant(variant); err != nil {
		return "", err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	params := url.Values{}
	for key, value := range variant {
		params.Set(key, formatValue(value))
	}
	if page > 1 {
		params.Set("p", strconv.Itoa(page))
	}

	return baseURL + "?" + params.Encode(), nil
}

// CatalogURLs builds the catalog URLs for pages 1..maxPages.
func CatalogURLs(variant Variant, baseURL string, maxPages int) ([]string, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("max_pages must be a positive integer, got %d", maxPages)
	}

	urls := make([]string, 0, maxPages)
	for page := 1; page <= maxPages; page++ {
		u, err := CatalogURL(variant, baseURL, page)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
