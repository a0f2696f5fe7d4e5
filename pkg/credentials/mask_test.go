package credentials

import (
	"strings"
	"testing"
)

func TestMaskKeyHidesToken(t *testing.T) {
	key := "wl_live_0123456789abcdefghijklmnopqrstuv"
	masked := MaskKey(key)
	if masked == key {
		t.Fatalf("expected key to be masked")
	}
	if strings.Contains(masked, "0123456789abcdefghijklmnopqrstuv") {
		t.Fatalf("expected token hidden, got %s", masked)
	}
}

func TestMaskKeyEmptyInput(t *testing.T) {
	if out := MaskKey(""); out != "" {
		t.Fatalf("expected empty output for empty input, got %q", out)
	}
}
