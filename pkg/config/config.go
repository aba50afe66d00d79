package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. The opener, command
// catalog, and facade pull from these nested structs.
type Config struct {
	Open        OpenConfig        `mapstructure:"open" json:"open"`
	Credentials CredentialsConfig `mapstructure:"credentials" json:"credentials"`
}

// OpenConfig controls the open-event request pipeline.
type OpenConfig struct {
	// Endpoint receives the open event POST.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// LaunchDelay is the fixed debounce between process init and the
	// launch-path trigger, giving deep-link callbacks a chance to land first.
	LaunchDelay time.Duration `mapstructure:"launch_delay" json:"launch_delay"`
	// RequestTimeout bounds the open POST round-trip.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`
	// UserAgentTimeout bounds user-agent resolution; on expiry the payload
	// is sent without a user_agent field.
	UserAgentTimeout time.Duration `mapstructure:"user_agent_timeout" json:"user_agent_timeout"`
}

// CredentialsConfig identifies the app against the attribution service.
// Secret may be left empty when SecretRef points at a secrets provider entry;
// the facade resolves the reference at construction time.
type CredentialsConfig struct {
	Key       string `mapstructure:"key" json:"key"`
	Secret    string `mapstructure:"secret" json:"secret,omitempty"`
	SecretRef string `mapstructure:"secret_ref" json:"secret_ref,omitempty"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Open: OpenConfig{
			Endpoint:         "https://api2.branch.io/v1/open",
			LaunchDelay:      500 * time.Millisecond,
			RequestTimeout:   10 * time.Second,
			UserAgentTimeout: 2 * time.Second,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Credentials.Key == "" {
		return errors.New("credentials.key is required")
	}
	if c.Credentials.Secret == "" && c.Credentials.SecretRef == "" {
		return errors.New("credentials.secret or credentials.secret_ref is required")
	}
	if c.Open.Endpoint == "" {
		return errors.New("open.endpoint is required")
	}
	if u, err := url.Parse(c.Open.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("open.endpoint must be an absolute URL: %q", c.Open.Endpoint)
	}
	if c.Open.LaunchDelay < 0 {
		return fmt.Errorf("open.launch_delay must be >= 0")
	}
	if c.Open.RequestTimeout <= 0 {
		return fmt.Errorf("open.request_timeout must be > 0")
	}
	if c.Open.UserAgentTimeout <= 0 {
		return fmt.Errorf("open.user_agent_timeout must be > 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map) using cfgx helpers. While
// cfgx.Build still returns zero values, we fall back to a lightweight decoder
// so hosts passing plain maps keep working.
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

	if c.Open.Endpoint == "" {
		c.Open.Endpoint = defaults.Open.Endpoint
	}
	if c.Open.LaunchDelay == 0 {
		c.Open.LaunchDelay = defaults.Open.LaunchDelay
	}
	if c.Open.RequestTimeout == 0 {
		c.Open.RequestTimeout = defaults.Open.RequestTimeout
	}
	if c.Open.UserAgentTimeout == 0 {
		c.Open.UserAgentTimeout = defaults.Open.UserAgentTimeout
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
