package normalize

import (
	"encoding/json"
	"testing"

	"github.com/waylink/go-deeplink/pkg/domain"
)

func TestLinkNonObjectInputs(t *testing.T) {
	for name, raw := range map[string]any{
		"nil":        nil,
		"string":     "https://example.com",
		"number":     42.0,
		"bool":       true,
		"slice":      []any{"a"},
		"nil map":    map[string]any(nil),
		"struct ptr": &struct{}{},
	} {
		if link := Link(raw); link != nil {
			t.Fatalf("%s: expected nil, got %+v", name, link)
		}
		if attr := Attribution(raw); attr != nil {
			t.Fatalf("%s: expected nil attribution, got %+v", name, attr)
		}
	}
}

func TestLinkAppliesDefaults(t *testing.T) {
	link := Link(map[string]any{})
	if link == nil {
		t.Fatal("expected a structurally complete link for an empty object")
	}
	if link.LinkID != "" || link.Destination != "" || link.DeepLinkURL != "" {
		t.Fatalf("expected empty string defaults, got %+v", link)
	}
	if link.CustomParams == nil || len(link.CustomParams) != 0 {
		t.Fatalf("expected empty non-nil params, got %v", link.CustomParams)
	}
	if link.IsDeferred {
		t.Fatal("expected isDeferred to default to false")
	}
	if link.MatchType != "" {
		t.Fatalf("expected absent match type, got %q", link.MatchType)
	}
	if link.MatchConfidence != nil {
		t.Fatalf("expected absent confidence, got %v", link.MatchConfidence)
	}
}

func TestLinkFieldCoercion(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, link *domain.ResolvedLink)
	}{
		{
			name: "full payload",
			raw: map[string]any{
				"linkId":          "lnk_9",
				"destination":     "https://example.com/sale",
				"deepLinkUrl":     "app://sale",
				"customParams":    map[string]any{"utm": "email"},
				"isDeferred":      true,
				"matchType":       "deterministic",
				"matchConfidence": 0.97,
			},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.LinkID != "lnk_9" || link.Destination != "https://example.com/sale" {
					t.Fatalf("unexpected identifiers: %+v", link)
				}
				if link.DeepLinkURL != "app://sale" || !link.IsDeferred {
					t.Fatalf("unexpected fields: %+v", link)
				}
				if link.CustomParams["utm"] != "email" {
					t.Fatalf("expected params preserved, got %v", link.CustomParams)
				}
				if link.MatchType != domain.MatchDeterministic {
					t.Fatalf("expected deterministic, got %q", link.MatchType)
				}
				if link.MatchConfidence == nil || *link.MatchConfidence != 0.97 {
					t.Fatalf("expected confidence 0.97, got %v", link.MatchConfidence)
				}
			},
		},
		{
			name: "non-string identifiers degrade to empty",
			raw:  map[string]any{"linkId": 12, "destination": true, "deepLinkUrl": []any{}},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.LinkID != "" || link.Destination != "" || link.DeepLinkURL != "" {
					t.Fatalf("expected empty defaults, got %+v", link)
				}
			},
		},
		{
			name: "null params degrade to empty map",
			raw:  map[string]any{"customParams": nil},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.CustomParams == nil || len(link.CustomParams) != 0 {
					t.Fatalf("expected empty params, got %v", link.CustomParams)
				}
			},
		},
		{
			name: "non-object params degrade to empty map",
			raw:  map[string]any{"customParams": "utm=email"},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if len(link.CustomParams) != 0 {
					t.Fatalf("expected empty params, got %v", link.CustomParams)
				}
			},
		},
		{
			name: "unrecognized match type degrades to absent",
			raw:  map[string]any{"matchType": "psychic"},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.MatchType != "" {
					t.Fatalf("expected absent match type, got %q", link.MatchType)
				}
			},
		},
		{
			name: "non-numeric confidence degrades to absent",
			raw:  map[string]any{"matchConfidence": "0.9"},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.MatchConfidence != nil {
					t.Fatalf("expected absent confidence, got %v", link.MatchConfidence)
				}
			},
		},
		{
			name: "non-bool isDeferred degrades to false",
			raw:  map[string]any{"isDeferred": "yes"},
			check: func(t *testing.T, link *domain.ResolvedLink) {
				if link.IsDeferred {
					t.Fatal("expected false")
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			link := Link(tc.raw)
			if link == nil {
				t.Fatal("expected a link")
			}
			tc.check(t, link)
		})
	}
}

func TestLinkZeroConfidencePreserved(t *testing.T) {
	link := Link(map[string]any{"matchConfidence": 0.0})
	if link.MatchConfidence == nil {
		t.Fatal("zero confidence must be preserved, not treated as unknown")
	}
	if *link.MatchConfidence != 0.0 {
		t.Fatalf("expected 0.0, got %v", *link.MatchConfidence)
	}
}

func TestLinkAcceptsJSONNumber(t *testing.T) {
	link := Link(map[string]any{"matchConfidence": json.Number("0.25")})
	if link.MatchConfidence == nil || *link.MatchConfidence != 0.25 {
		t.Fatalf("expected 0.25, got %v", link.MatchConfidence)
	}
}

func TestAttributionRejectsPartialRecords(t *testing.T) {
	for name, raw := range map[string]any{
		"missing both":           map[string]any{"linkId": "lnk_1"},
		"missing confidence":     map[string]any{"matchType": "probabilistic"},
		"missing match type":     map[string]any{"matchConfidence": 0.5},
		"invalid match type":     map[string]any{"matchType": "psychic", "matchConfidence": 0.5},
		"non-numeric confidence": map[string]any{"matchType": "deterministic", "matchConfidence": "high"},
	} {
		if attr := Attribution(raw); attr != nil {
			t.Fatalf("%s: expected rejection, got %+v", name, attr)
		}
	}
}

func TestAttributionBuildsCompleteRecord(t *testing.T) {
	attr := Attribution(domain.JSONMap{
		"linkId":          "lnk_1",
		"installId":       "ins_7",
		"isDeferred":      true,
		"matchType":       "probabilistic",
		"matchConfidence": 0.0,
	})
	if attr == nil {
		t.Fatal("expected an attribution record")
	}
	if attr.LinkID != "lnk_1" || attr.InstallID != "ins_7" || !attr.IsDeferred {
		t.Fatalf("unexpected fields: %+v", attr)
	}
	if attr.MatchType != domain.MatchProbabilistic {
		t.Fatalf("expected probabilistic, got %q", attr.MatchType)
	}
	if attr.MatchConfidence != 0.0 {
		t.Fatalf("expected zero confidence preserved, got %v", attr.MatchConfidence)
	}
}
