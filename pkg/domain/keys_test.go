package domain

import (
	"strings"
	"testing"
)

func TestValidateAPIKeyAcceptsWellFormedKeys(t *testing.T) {
	for _, key := range []string{
		"wl_live_" + strings.Repeat("a", 32),
		"wl_test_" + strings.Repeat("Z", 32),
		"wl_live_0123456789abcdefABCDEF0123456789",
	} {
		if err := ValidateAPIKey(key); err != nil {
			t.Fatalf("expected %q to validate, got %v", key, err)
		}
	}
}

func TestValidateAPIKeyRejectsMalformedKeys(t *testing.T) {
	suffix := strings.Repeat("a", 32)
	for name, key := range map[string]string{
		"wrong environment": "wl_prod_" + suffix,
		"missing vendor":    "live_" + suffix,
		"31 char suffix":    "wl_live_" + strings.Repeat("a", 31),
		"33 char suffix":    "wl_live_" + strings.Repeat("a", 33),
		"non alphanumeric":  "wl_live_" + strings.Repeat("a", 31) + "!",
		"embedded space":    "wl_live_" + strings.Repeat("a", 16) + " " + strings.Repeat("a", 15),
		"empty":             "",
		"uppercase env":     "wl_LIVE_" + suffix,
	} {
		err := ValidateAPIKey(key)
		if err == nil {
			t.Fatalf("%s: expected %q to fail validation", name, key)
		}
		if !IsKind(err, KindInvalidKeyFormat) {
			t.Fatalf("%s: expected %s, got %v", name, KindInvalidKeyFormat, err)
		}
	}
}

func TestKeyEnvironment(t *testing.T) {
	if env := KeyEnvironment("wl_test_" + strings.Repeat("b", 32)); env != "test" {
		t.Fatalf("expected test environment, got %q", env)
	}
	if env := KeyEnvironment("wl_prod_" + strings.Repeat("b", 32)); env != "" {
		t.Fatalf("expected empty environment for malformed key, got %q", env)
	}
}
