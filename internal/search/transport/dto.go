// Package transport defines the request and response shapes of the search API.
package transport

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/BaskovKonstantin/EstateFinder/internal/cian"
	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

// Control parameters steer the pipeline and never reach the catalog URL.
var controlParams = map[string]bool{
	"max_pages":  true,
	"radius":     true,
	"limit":      true,
	"venue_type": true,
}

// SearchRequest is a fully parsed search: pipeline controls plus the typed
// catalog filter variant.
type SearchRequest struct {
	MaxPages  int    `validate:"min=1,max=50"`
	Radius    int    `validate:"min=0,max=5000"`
	Limit     int    `validate:"min=1,max=200"`
	VenueType string `validate:"required"`

	Variant  cian.Variant
	RawQuery string
}

// SearchResponse mirrors the wire format the result table consumes.
type SearchResponse struct {
	Count   int              `json:"count"`
	Estates []map[string]any `json:"estates"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// ParseSearchRequest extracts controls (with defaults) and the filter
// variant from a query string, validating both.
func ParseSearchRequest(values url.Values, v *validator.Validator) (*SearchRequest, error) {
	const op = "transport.ParseSearchRequest"

	req := &SearchRequest{
		MaxPages:  1,
		Radius:    100,
		Limit:     50,
		VenueType: "standard",
		RawQuery:  values.Encode(),
	}

	var err error
	if req.MaxPages, err = intParam(values, "max_pages", req.MaxPages); err != nil {
		return nil, err
	}
	if req.Radius, err = intParam(values, "radius", req.Radius); err != nil {
		return nil, err
	}
	if req.Limit, err = intParam(values, "limit", req.Limit); err != nil {
		return nil, err
	}
	if raw := values.Get("venue_type"); raw != "" {
		req.VenueType = raw
	}

	if err := v.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid search controls", err).WithOp(op)
	}

	req.Variant = cian.ParseVariant(values, controlParams)
	if err := cian.ValidateVariant(req.Variant); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err).WithOp(op)
	}

	return req, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("parameter %q must be an integer", name))
	}
	return parsed, nil
}
