package cian

import (
	"encoding/json"
	"regexp"
)

// Offer pages embed a large JSON state blob in a script tag. Its start is
// recognizable by the factoids array.
var reEmbeddedJSONStart = regexp.MustCompile(`\{\s*"factoids"\s*:\s*\[`)

// extractEmbeddedJSON locates the embedded state blob and decodes it.
// The blob is delimited by balancing braces while respecting JSON string
// literals and escape sequences. Returns nil when no blob is found or it
// fails to decode.
func extractEmbeddedJSON(html string) map[string]any {
	loc := reEmbeddedJSONStart.FindStringIndex(html)
	if loc == nil {
		return nil
	}

	start := loc[0]
	level := 0
	inString := false
	escaped := false

	for i := start; i < len(html); i++ {
		ch := html[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				var data map[string]any
				if err := json.Unmarshal([]byte(html[start:i+1]), &data); err != nil {
					return nil
				}
				return data
			}
		}
	}
	return nil
}

// dig walks a decoded JSON map along dotted path segments.
// Returns nil when any intermediate value is missing or not an object.
func dig(data map[string]any, path ...string) any {
	var current any = data
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}

func digString(data map[string]any, path ...string) string {
	if s, ok := dig(data, path...).(string); ok {
		return s
	}
	return ""
}

func digFloat(data map[string]any, path ...string) (float64, bool) {
	if f, ok := dig(data, path...).(float64); ok {
		return f, true
	}
	return 0, false
}

func digInt(data map[string]any, path ...string) (int, bool) {
	if f, ok := digFloat(data, path...); ok {
		return int(f), true
	}
	return 0, false
}
