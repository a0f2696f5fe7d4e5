// Package normalize converts loosely-typed resolver payloads into the
// strict domain records. Both entry points are pure: no I/O, no logging,
// and malformed input degrades to defaults or nil instead of failing.
package normalize

import (
	"encoding/json"

	"github.com/waylink/go-deeplink/pkg/domain"
)

// Link builds a ResolvedLink from a raw payload. It returns nil only when
// the payload itself is not a string-keyed object; every field-level
// problem degrades to that field's default instead.
func Link(raw any) *domain.ResolvedLink {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}
	link := &domain.ResolvedLink{
		LinkID:       stringField(obj, "linkId"),
		Destination:  stringField(obj, "destination"),
		DeepLinkURL:  stringField(obj, "deepLinkUrl"),
		CustomParams: paramsField(obj, "customParams"),
		IsDeferred:   boolField(obj, "isDeferred"),
	}
	if matchType, ok := domain.ParseMatchType(stringField(obj, "matchType")); ok {
		link.MatchType = matchType
	}
	if confidence, ok := numericField(obj, "matchConfidence"); ok {
		link.MatchConfidence = &confidence
	}
	return link
}

// Attribution builds an AttributionResult from a raw payload. Attribution
// is only meaningful when fully determined, so this is stricter than Link:
// a payload that is not an object, or whose matchType is not one of the two
// valid literals, or whose matchConfidence is not numeric, rejects the
// whole record.
func Attribution(raw any) *domain.AttributionResult {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}
	matchType, ok := domain.ParseMatchType(stringField(obj, "matchType"))
	if !ok {
		return nil
	}
	confidence, ok := numericField(obj, "matchConfidence")
	if !ok {
		return nil
	}
	return &domain.AttributionResult{
		LinkID:          stringField(obj, "linkId"),
		InstallID:       stringField(obj, "installId"),
		IsDeferred:      boolField(obj, "isDeferred"),
		MatchType:       matchType,
		MatchConfidence: confidence,
	}
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, v != nil
	case domain.JSONMap:
		return map[string]any(v), v != nil
	}
	return nil, false
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

func boolField(obj map[string]any, key string) bool {
	if b, ok := obj[key].(bool); ok {
		return b
	}
	return false
}

// paramsField returns the nested object at key, or an empty non-nil map
// when the value is absent, null, or not an object.
func paramsField(obj map[string]any, key string) domain.JSONMap {
	if nested, ok := asObject(obj[key]); ok {
		return domain.JSONMap(nested)
	}
	return domain.JSONMap{}
}

// numericField strictly checks the numeric type: JSON decoding yields
// float64 (or json.Number under UseNumber), and Go callers may hand in
// plain ints. Anything else, including numeric strings, reports false.
func numericField(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
