package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
)

// DefaultThresholds are the documented defaults applied when the thresholds
// section is absent from the config file. Temperature bounds follow the safe
// storage band for biohazard waste (15–30 °C).
var DefaultThresholds = Thresholds{
	FillWarning:       70,
	FillCritical:      90,
	FillOverflow:      100,
	TempSafeMin:       15,
	TempWarningMax:    30,
	TempCriticalMax:   40,
	WeightWarningMax:  25,
	WeightCriticalMax: 35,
	StalenessWindow:   24 * time.Hour,
}

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming REST clients.
	Auth AuthConfig `yaml:"auth"`

	// BroadcastInterval controls how often the WebSocket hub pushes a fresh
	// snapshot to connected clients (default 5s).
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Thresholds holds every classification and alert-rule bound.
	Thresholds Thresholds `yaml:"thresholds"`

	// Webhooks holds alert notification delivery targets.
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// Thresholds collects all classification and alert-rule bounds in one place
// so nothing is hard-coded inside rule logic. Zero values are replaced with
// DefaultThresholds entries during Load.
type Thresholds struct {
	// FillWarning..FillOverflow are fill-level percentages. A bin is
	// `normal` below FillWarning, `warning` from FillWarning up to
	// FillCritical, `critical` up to FillOverflow, and `overflow` at or
	// above FillOverflow.
	FillWarning  float64 `yaml:"fill_warning"`
	FillCritical float64 `yaml:"fill_critical"`
	FillOverflow float64 `yaml:"fill_overflow"`

	// TempSafeMin and TempWarningMax bound the safe storage band in °C.
	// TempCriticalMax is the wider bound that escalates an open
	// temperature alert.
	TempSafeMin     float64 `yaml:"temp_safe_min"`
	TempWarningMax  float64 `yaml:"temp_warning_max"`
	TempCriticalMax float64 `yaml:"temp_critical_max"`

	// WeightWarningMax and WeightCriticalMax are kilogram bounds for the
	// weight alert rule.
	WeightWarningMax  float64 `yaml:"weight_warning_max"`
	WeightCriticalMax float64 `yaml:"weight_critical_max"`

	// StalenessWindow is how long a bin may go without being emptied before
	// the statistics snapshot counts it as stale. Default: 24h.
	StalenessWindow time.Duration `yaml:"staleness_window"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// WebhookConfig defines one alert notification target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	fillThresholdDefaults(&cfg.Server.Thresholds)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			Thresholds:        DefaultThresholds,
		},
	}
}

// fillThresholdDefaults replaces unset (zero) threshold fields with their
// defaults. A partial thresholds section in the file only overrides the
// fields it names.
func fillThresholdDefaults(t *Thresholds) {
	d := DefaultThresholds
	if t.FillWarning == 0 {
		t.FillWarning = d.FillWarning
	}
	if t.FillCritical == 0 {
		t.FillCritical = d.FillCritical
	}
	if t.FillOverflow == 0 {
		t.FillOverflow = d.FillOverflow
	}
	if t.TempSafeMin == 0 {
		t.TempSafeMin = d.TempSafeMin
	}
	if t.TempWarningMax == 0 {
		t.TempWarningMax = d.TempWarningMax
	}
	if t.TempCriticalMax == 0 {
		t.TempCriticalMax = d.TempCriticalMax
	}
	if t.WeightWarningMax == 0 {
		t.WeightWarningMax = d.WeightWarningMax
	}
	if t.WeightCriticalMax == 0 {
		t.WeightCriticalMax = d.WeightCriticalMax
	}
	if t.StalenessWindow == 0 {
		t.StalenessWindow = d.StalenessWindow
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	return cfg.Server.Thresholds.Validate()
}

// Validate checks ordering constraints between threshold bounds.
func (t Thresholds) Validate() error {
	if !(t.FillWarning < t.FillCritical && t.FillCritical < t.FillOverflow) {
		return fmt.Errorf("thresholds: fill bounds must be strictly increasing (warning %.1f, critical %.1f, overflow %.1f)",
			t.FillWarning, t.FillCritical, t.FillOverflow)
	}
	if t.TempSafeMin >= t.TempWarningMax {
		return fmt.Errorf("thresholds: temp_safe_min %.1f must be below temp_warning_max %.1f",
			t.TempSafeMin, t.TempWarningMax)
	}
	if t.TempWarningMax >= t.TempCriticalMax {
		return fmt.Errorf("thresholds: temp_warning_max %.1f must be below temp_critical_max %.1f",
			t.TempWarningMax, t.TempCriticalMax)
	}
	if t.WeightWarningMax <= 0 || t.WeightWarningMax >= t.WeightCriticalMax {
		return fmt.Errorf("thresholds: weight bounds must satisfy 0 < warning %.1f < critical %.1f",
			t.WeightWarningMax, t.WeightCriticalMax)
	}
	if t.StalenessWindow < 0 {
		return fmt.Errorf("thresholds: staleness_window must not be negative")
	}
	return nil
}
