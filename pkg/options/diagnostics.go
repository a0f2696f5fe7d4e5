package options

import (
	"time"

	opts "github.com/goliatone/go-options"
	"github.com/waylink/go-deeplink/pkg/config"
	"github.com/waylink/go-deeplink/pkg/credentials"
)

// RuntimeState mirrors the coordinator's view of the active configuration.
// Zero Phase means the SDK has not been configured yet.
type RuntimeState struct {
	APIKey       string
	Environment  string
	Phase        string
	ConfiguredAt time.Time
}

// Describe layers built-in defaults, the loaded configuration and the
// runtime state into a resolver so support tooling can answer "what value
// is in effect and where did it come from". Secrets are masked before they
// enter a snapshot, so the result is safe to log or export.
func Describe(cfg config.Config, runtime RuntimeState) (*Resolver, error) {
	snapshots := []Snapshot{
		{
			Scope: opts.NewScope("defaults", opts.ScopePrioritySystem-1000, opts.WithScopeLabel("Defaults")),
			Data:  configPayload(config.Defaults()),
		},
		{
			Scope: opts.NewScope("config", opts.ScopePrioritySystem, opts.WithScopeLabel("Config")),
			Data:  configPayload(cfg),
		},
	}
	if snap := runtimeSnapshot(runtime); snap != nil {
		snapshots = append(snapshots, *snap)
	}
	return NewResolver(snapshots...)
}

func runtimeSnapshot(state RuntimeState) *Snapshot {
	if state.Phase == "" {
		return nil
	}
	payload := map[string]any{
		"phase": state.Phase,
	}
	if state.APIKey != "" {
		payload["api_key"] = credentials.MaskKey(state.APIKey)
	}
	if state.Environment != "" {
		payload["environment"] = state.Environment
	}
	if !state.ConfiguredAt.IsZero() {
		payload["configured_at"] = state.ConfiguredAt.UTC().Format(time.RFC3339)
	}
	return &Snapshot{
		Scope: opts.NewScope("runtime", opts.ScopePriorityUser, opts.WithScopeLabel("Runtime")),
		Data:  payload,
	}
}

func configPayload(cfg config.Config) map[string]any {
	payload := map[string]any{
		"debug_logging":         cfg.DebugLogging,
		"match_window_hours":    cfg.MatchWindowHours,
		"resolver_max_attempts": cfg.Resolver.MaxAttempts,
		"resolver_timeout":      cfg.Resolver.Timeout.String(),
		"attribution_cache_ttl": cfg.Lifecycle.AttributionCacheTTL.String(),
		"journal_enabled":       cfg.Journal.Enabled,
		"journal_retention":     cfg.Journal.RetentionDays,
		"sinks":                 enabledSinks(cfg.Sinks),
	}
	if cfg.APIEndpoint != "" {
		payload["endpoint"] = cfg.APIEndpoint
	}
	if cfg.APIKey != "" {
		payload["api_key"] = credentials.MaskKey(cfg.APIKey)
		payload["environment"] = cfg.Environment()
	}
	return payload
}

func enabledSinks(cfg config.SinksConfig) []string {
	names := []string{}
	if cfg.Console.Enabled {
		names = append(names, "console")
	}
	if cfg.Webhook.Enabled {
		names = append(names, "webhook")
	}
	return names
}
