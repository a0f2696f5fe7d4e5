// Package resolver defines the boundary to the external attribution and
// resolution service, plus the gateway that normalizes its responses into
// the typed domain model. Matching, confidence scoring, and retry policy
// all live on the far side of the Client interface.
package resolver

import "context"

// Config mirrors the configuration payload the resolution service accepts.
type Config struct {
	APIKey           string `json:"apiKey"`
	APIEndpoint      string `json:"apiEndpoint,omitempty"`
	DebugLogging     bool   `json:"debugLogging,omitempty"`
	MatchWindowHours int    `json:"matchWindowHours,omitempty"`
}

// Client is implemented by resolution-service transports. Raw results are
// untyped; the gateway runs them through the normalizer. Errors may satisfy
// domain.Coder to carry a wire code.
type Client interface {
	Configure(ctx context.Context, cfg Config) error
	Resolve(ctx context.Context, url string) (any, error)
	CheckDeferred(ctx context.Context) (any, error)
	GetAttribution(ctx context.Context) (any, error)
	IsConfigured(ctx context.Context) (bool, error)
}
