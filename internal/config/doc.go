// Package config loads the binwatch-server configuration from the `server:`
// section of config.yaml.
//
// Config fields:
//   - HTTPPort           — port for the REST API and WebSocket hub (default 8080)
//   - Auth.Mode          — "apikey" or "none"
//   - Auth.KeyEnv        — environment variable holding the expected API key
//   - Auth.Header        — HTTP header name (default "x-api-key")
//   - BroadcastInterval  — WebSocket snapshot push cadence (default 5s)
//   - Thresholds         — every classification and alert-rule bound
//   - Webhooks           — alert notification targets (URL resolved from env)
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads thresholds on file change and keeps
// the previous config when a reload fails.
package config
