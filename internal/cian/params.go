// Package cian implements the Cian catalog crawler: query parameter
// validation, catalog URL generation, ad link extraction and offer parsing.
package cian

import (
	"fmt"
	"net/url"
	"strconv"
)

// Kind is the expected type of a catalog query parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Spec constrains one catalog query parameter.
type Spec struct {
	Kind           Kind
	AllowedInts    []int
	AllowedStrings []string
	Min            *float64
	Max            *float64
}

func limit(v float64) *float64 { return &v }

// ParamSpecs lists every catalog parameter the crawler understands.
// Parameters outside this table pass through unvalidated, exactly as the
// upstream site would receive them.
var ParamSpecs = map[string]Spec{
	"deal_type":      {Kind: KindString, AllowedStrings: []string{"sale", "rent"}},
	"engine_version": {Kind: KindInt, AllowedInts: []int{1, 2}},
	"object_type[0]": {Kind: KindInt, AllowedInts: []int{1}},
	"offer_type":     {Kind: KindString, AllowedStrings: []string{"flat", "house", "commercial", "offices"}},
	"region":         {Kind: KindInt},

	"room1": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room2": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room3": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room4": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room5": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room6": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room7": {Kind: KindInt, Min: limit(1), Max: limit(10)},
	"room9": {Kind: KindInt, Min: limit(1), Max: limit(10)},

	"currency":           {Kind: KindInt, AllowedInts: []int{1, 2}},
	"electronic_trading": {Kind: KindInt, AllowedInts: []int{1, 2}},
	"flat_share":         {Kind: KindInt, AllowedInts: []int{1, 2}},
	"has_video":          {Kind: KindInt, AllowedInts: []int{0, 1}},
	"house_material[0]":  {Kind: KindInt, AllowedInts: []int{1, 2, 3, 4}},
	"lift_service":       {Kind: KindInt, AllowedInts: []int{0, 1}},
	"loggia":             {Kind: KindInt, AllowedInts: []int{0, 1}},

	"max_house_year":     {Kind: KindInt, Min: limit(1000), Max: limit(2023)},
	"maxfloor":           {Kind: KindInt, Min: limit(1)},
	"maxfloorn":          {Kind: KindInt, Min: limit(1)},
	"maxkarea":           {Kind: KindInt, Min: limit(0)},
	"maxlarea":           {Kind: KindInt, Min: limit(0)},
	"maxprice":           {Kind: KindInt, Min: limit(0)},
	"maxtarea":           {Kind: KindInt, Min: limit(0)},
	"min_ceiling_height": {Kind: KindFloat, Min: limit(0)},
	"min_house_year":     {Kind: KindInt, Min: limit(1000), Max: limit(2023)},
	"minfloor":           {Kind: KindInt, Min: limit(1)},
	"minfloorn":          {Kind: KindInt, Min: limit(1)},
	"minkarea":           {Kind: KindInt, Min: limit(0)},
	"minlarea":           {Kind: KindInt, Min: limit(0)},
	"minprice":           {Kind: KindInt, Min: limit(0)},
	"minsu_r":            {Kind: KindInt, Min: limit(0)},
	"mintarea":           {Kind: KindInt, Min: limit(0)},

	"offer_seller_type[0]": {Kind: KindInt, AllowedInts: []int{1, 2, 3}},
	"only_flat":            {Kind: KindInt, AllowedInts: []int{0, 1}},
	"parking_type[0]":      {Kind: KindInt, AllowedInts: []int{1, 2, 3}},
	"repair[0]":            {Kind: KindInt, AllowedInts: []int{1, 2, 3}},
	"repair[1]":            {Kind: KindInt, AllowedInts: []int{1, 2, 3}},
	"room_type":            {Kind: KindInt, AllowedInts: []int{1, 2}},
	"sost_type[0]":         {Kind: KindInt, AllowedInts: []int{1, 2}},
}

// Variant is a validated set of catalog query parameters. Values are
// int, float64 or string depending on how the raw input coerced.
type Variant map[string]any

// ParseVariant coerces raw query values into typed variant values:
// all-digit strings become ints, parseable numbers become floats,
// everything else stays a string. Array-style parameter names such as
// "object_type[0]" are preserved literally.
func ParseVariant(values url.Values, skip map[string]bool) Variant {
	variant := make(Variant)
	for key, vals := range values {
		if skip[key] || len(vals) == 0 {
			continue
		}
		variant[key] = coerce(vals[0])
	}
	return variant
}

func coerce(raw string) any {
	if raw != "" && allDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateVariant checks every known parameter against its spec.
// Unknown parameters are accepted untouched.
func ValidateVariant(variant Variant) error {
	for key, value := range variant {
		spec, ok := ParamSpecs[key]
		if !ok {
			continue
		}
		if err := spec.check(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s Spec) check(key string, value any) error {
	switch s.Kind {
	case KindInt:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("parameter %q must be an integer, got %T", key, value)
		}
		return s.checkNumber(key, float64(n))
	case KindFloat:
		switch v := value.(type) {
		case float64:
			return s.checkNumber(key, v)
		case int:
			// Integer input is acceptable where a float is expected.
			return s.checkNumber(key, float64(v))
		default:
			return fmt.Errorf("parameter %q must be a number, got %T", key, value)
		}
	default:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("parameter %q must be a string, got %T", key, value)
		}
		if len(s.AllowedStrings) > 0 && !containsString(s.AllowedStrings, str) {
			return fmt.Errorf("parameter %q has invalid value %q, allowed: %v", key, str, s.AllowedStrings)
		}
		return nil
	}
}

func (s Spec) checkNumber(key string, v float64) error {
	if len(s.AllowedInts) > 0 && !containsInt(s.AllowedInts, int(v)) {
		return fmt.Errorf("parameter %q has invalid value %v, allowed: %v", key, v, s.AllowedInts)
	}
	if s.Min != nil && v < *s.Min {
		return fmt.Errorf("parameter %q value %v is below the minimum %v", key, v, *s.Min)
	}
	if s.Max != nil && v > *s.Max {
		return fmt.Errorf("parameter %q value %v exceeds the maximum %v", key, v, *s.Max)
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
