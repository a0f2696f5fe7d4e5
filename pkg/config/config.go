package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-config/cfgx"

	"github.com/waylink/go-deeplink/pkg/domain"
)

// Config captures module-level configuration knobs. Feature packages
// (resolver, lifecycle, journal, sinks) pull from these nested structs.
type Config struct {
	// APIKey is the Waylink key issued per app, wl_<live|test>_<32 chars>.
	APIKey           string `mapstructure:"api_key" json:"api_key" env:"WAYLINK_API_KEY"`
	APIEndpoint      string `mapstructure:"api_endpoint" json:"api_endpoint" env:"WAYLINK_API_ENDPOINT"`
	DebugLogging     bool   `mapstructure:"debug_logging" json:"debug_logging" env:"WAYLINK_DEBUG_LOGGING"`
	MatchWindowHours int    `mapstructure:"match_window_hours" json:"match_window_hours" env:"WAYLINK_MATCH_WINDOW_HOURS"`

	Resolver    ResolverConfig    `mapstructure:"resolver" json:"resolver"`
	Lifecycle   LifecycleConfig   `mapstructure:"lifecycle" json:"lifecycle"`
	Journal     JournalConfig     `mapstructure:"journal" json:"journal"`
	Sinks       SinksConfig       `mapstructure:"sinks" json:"sinks"`
	Credentials CredentialsConfig `mapstructure:"credentials" json:"credentials"`
}

// ResolverConfig tunes the HTTP client used against the resolution service.
type ResolverConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts" env:"WAYLINK_RESOLVER_MAX_ATTEMPTS"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout" env:"WAYLINK_RESOLVER_TIMEOUT"`
}

// LifecycleConfig tunes coordinator behavior.
type LifecycleConfig struct {
	AttributionCacheTTL time.Duration `mapstructure:"attribution_cache_ttl" json:"attribution_cache_ttl" env:"WAYLINK_ATTRIBUTION_CACHE_TTL"`
}

// JournalConfig enables the on-device activity journal.
type JournalConfig struct {
	Enabled       bool `mapstructure:"enabled" json:"enabled" env:"WAYLINK_JOURNAL_ENABLED"`
	RetentionDays int  `mapstructure:"retention_days" json:"retention_days" env:"WAYLINK_JOURNAL_RETENTION_DAYS"`
}

// SinksConfig toggles optional event sinks.
type SinksConfig struct {
	Console ConsoleSinkConfig `mapstructure:"console" json:"console"`
	Webhook WebhookSinkConfig `mapstructure:"webhook" json:"webhook"`
}

// ConsoleSinkConfig controls the logging sink.
type ConsoleSinkConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" env:"WAYLINK_SINK_CONSOLE_ENABLED"`
}

// WebhookSinkConfig controls the outbound webhook sink.
type WebhookSinkConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" env:"WAYLINK_SINK_WEBHOOK_ENABLED"`
	URL     string `mapstructure:"url" json:"url" env:"WAYLINK_SINK_WEBHOOK_URL"`
	Secret  string `mapstructure:"secret" json:"secret" env:"WAYLINK_SINK_WEBHOOK_SECRET"`
}

// CredentialsConfig governs the encrypted credential store.
type CredentialsConfig struct {
	// EncryptionKey is the hex-encoded 32-byte key protecting stored
	// credentials. Empty disables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key" json:"encryption_key" env:"WAYLINK_CREDENTIALS_ENCRYPTION_KEY"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		APIEndpoint:      "https://api.wayl.ink",
		MatchWindowHours: 24,
		Resolver: ResolverConfig{
			MaxAttempts: 3,
			Timeout:     10 * time.Second,
		},
		Lifecycle: LifecycleConfig{
			AttributionCacheTTL: 5 * time.Minute,
		},
		Journal: JournalConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.APIKey != "" {
		if err := domain.ValidateAPIKey(c.APIKey); err != nil {
			return err
		}
	}
	if c.APIEndpoint == "" {
		return errors.New("api_endpoint is required")
	}
	if c.MatchWindowHours < 0 {
		return fmt.Errorf("match_window_hours must be >= 0")
	}
	if c.Resolver.MaxAttempts <= 0 {
		return fmt.Errorf("resolver.max_attempts must be > 0")
	}
	if c.Resolver.Timeout < 0 {
		return fmt.Errorf("resolver.timeout must be >= 0")
	}
	if c.Lifecycle.AttributionCacheTTL < 0 {
		return fmt.Errorf("lifecycle.attribution_cache_ttl must be >= 0")
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must be >= 0")
	}
	if c.Sinks.Webhook.Enabled && c.Sinks.Webhook.URL == "" {
		return errors.New("sinks.webhook.url is required when the webhook sink is enabled")
	}
	return nil
}

// Environment reports the key environment segment (live or test), or empty
// when no well-formed key is set.
func (c Config) Environment() string {
	return domain.KeyEnvironment(c.APIKey)
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful. Once cfgx is fully implemented we
// can drop the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// FromEnv builds a Config from WAYLINK_* environment variables layered over
// the defaults.
func FromEnv() (Config, error) {
	cfg := Defaults()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.APIEndpoint == "" {
		c.APIEndpoint = defaults.APIEndpoint
	}
	if c.MatchWindowHours == 0 {
		c.MatchWindowHours = defaults.MatchWindowHours
	}
	if c.Resolver.MaxAttempts == 0 {
		c.Resolver.MaxAttempts = defaults.Resolver.MaxAttempts
	}
	if c.Resolver.Timeout == 0 {
		c.Resolver.Timeout = defaults.Resolver.Timeout
	}
	if c.Lifecycle.AttributionCacheTTL == 0 {
		c.Lifecycle.AttributionCacheTTL = defaults.Lifecycle.AttributionCacheTTL
	}
	if !c.Journal.Enabled {
		c.Journal.Enabled = defaults.Journal.Enabled
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = defaults.Journal.RetentionDays
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
