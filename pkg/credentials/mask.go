package credentials

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

var defaultSecretFields = []string{
	"api_key", "apikey", "apiKey",
	"secret", "webhook_secret", "encryption_key",
}

func init() {
	// Register credential-ish fields so masking uses sane defaults.
	for _, field := range defaultSecretFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// MaskKey returns a masked rendering of an API key for safe logging,
// keeping only the outermost characters.
func MaskKey(key string) string {
	return maskString(key)
}

func maskString(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	// Fallback masking if no rule is registered.
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
