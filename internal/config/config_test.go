package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes yaml to a temp file and returns its path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: BINWATCH_API_KEY
    header: x-binwatch-token
  thresholds:
    fill_warning: 60
    fill_critical: 85
    fill_overflow: 98
    temp_safe_min: 10
    temp_warning_max: 28
    temp_critical_max: 38
    weight_warning_max: 20
    weight_critical_max: 30
    staleness_window: 12h
  webhooks:
    - type: slack
      url_env: BINWATCH_SLACK_URL
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := cfg.Server
	if s.HTTPPort != 9090 {
		t.Errorf("http_port: got %d, want 9090", s.HTTPPort)
	}
	if s.BroadcastInterval != 2*time.Second {
		t.Errorf("broadcast_interval: got %v, want 2s", s.BroadcastInterval)
	}
	if s.Auth.Mode != "apikey" || s.Auth.EffectiveHeader() != "x-binwatch-token" {
		t.Errorf("auth: %+v", s.Auth)
	}
	if s.Thresholds.FillWarning != 60 || s.Thresholds.StalenessWindow != 12*time.Hour {
		t.Errorf("thresholds: %+v", s.Thresholds)
	}
	if len(s.Webhooks) != 1 || s.Webhooks[0].Type != "slack" {
		t.Errorf("webhooks: %+v", s.Webhooks)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("broadcast_interval: got %v, want %v", cfg.Server.BroadcastInterval, DefaultBroadcastInterval)
	}
	if cfg.Server.Thresholds != DefaultThresholds {
		t.Errorf("thresholds: got %+v, want defaults", cfg.Server.Thresholds)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-api-key" {
		t.Errorf("auth header: got %q, want x-api-key", cfg.Server.Auth.EffectiveHeader())
	}
}

func TestLoad_PartialThresholds(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  thresholds:
    fill_warning: 50
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := cfg.Server.Thresholds
	if got.FillWarning != 50 {
		t.Errorf("fill_warning: got %v, want 50", got.FillWarning)
	}
	// Unnamed fields keep their defaults.
	if got.FillCritical != DefaultThresholds.FillCritical {
		t.Errorf("fill_critical: got %v, want default %v", got.FillCritical, DefaultThresholds.FillCritical)
	}
	if got.StalenessWindow != DefaultThresholds.StalenessWindow {
		t.Errorf("staleness_window: got %v, want default %v", got.StalenessWindow, DefaultThresholds.StalenessWindow)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad port",
			yaml: "server:\n  http_port: 70000\n",
			want: "http_port",
		},
		{
			name: "unknown auth mode",
			yaml: "server:\n  auth:\n    mode: oauth\n",
			want: "auth.mode",
		},
		{
			name: "fill bounds out of order",
			yaml: "server:\n  thresholds:\n    fill_warning: 95\n",
			want: "fill bounds",
		},
		{
			name: "temp bounds out of order",
			yaml: "server:\n  thresholds:\n    temp_safe_min: 35\n",
			want: "temp_safe_min",
		},
		{
			name: "weight bounds out of order",
			yaml: "server:\n  thresholds:\n    weight_warning_max: 50\n",
			want: "weight bounds",
		},
		{
			name: "not yaml",
			yaml: "{{{",
			want: "parse yaml",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("Load: expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestAuthConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("BINWATCH_TEST_KEY", "s3cret")

	a := AuthConfig{Mode: "apikey", KeyEnv: "BINWATCH_TEST_KEY"}
	if got := a.Key(); got != "s3cret" {
		t.Errorf("Key: got %q, want s3cret", got)
	}
	if got := (AuthConfig{}).Key(); got != "" {
		t.Errorf("Key with no env: got %q, want empty", got)
	}
}

func TestWebhookConfig_URLFromEnv(t *testing.T) {
	t.Setenv("BINWATCH_TEST_URL", "https://hooks.example.com/x")

	w := WebhookConfig{Type: "http", URLEnv: "BINWATCH_TEST_URL"}
	if got := w.URL(); got != "https://hooks.example.com/x" {
		t.Errorf("URL: got %q, want env value", got)
	}
}
