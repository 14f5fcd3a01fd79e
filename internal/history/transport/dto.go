// Package transport defines the search history API shapes.
package transport

// SearchSummary is one recorded search run.
type SearchSummary struct {
	ID         int64  `json:"id"`
	CacheKey   string `json:"cache_key"`
	Query      string `json:"query"`
	Count      int    `json:"count"`
	CacheHit   bool   `json:"cache_hit"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// ListResponse is the payload of GET /api/v1/searches.
type ListResponse struct {
	Searches []SearchSummary `json:"searches"`
}
