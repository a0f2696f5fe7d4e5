package domain

import "regexp"

// API keys are issued as wl_<env>_<token>: the literal "wl" vendor segment,
// an environment segment of live or test, then exactly 32 alphanumerics.
var apiKeyPattern = regexp.MustCompile(`^wl_(live|test)_[a-zA-Z0-9]{32}$`)

// ValidateAPIKey checks the key format locally. It never touches the
// network; a malformed key fails here before any resolver call is made.
func ValidateAPIKey(key string) error {
	if !apiKeyPattern.MatchString(key) {
		return NewError(KindInvalidKeyFormat, "api key does not match wl_<live|test>_<32 alphanumerics>")
	}
	return nil
}

// KeyEnvironment extracts the environment segment from a well-formed key.
// Returns an empty string for malformed keys.
func KeyEnvironment(key string) string {
	match := apiKeyPattern.FindStringSubmatch(key)
	if match == nil {
		return ""
	}
	return match[1]
}
