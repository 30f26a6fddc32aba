package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemad.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http_addr = %q", cfg.HTTPAddr)
	}
	if cfg.Refresh.Cooldown != 30*time.Minute {
		t.Errorf("cooldown = %s, want 30m", cfg.Refresh.Cooldown)
	}
	if !cfg.Schema.EnableFetch {
		t.Error("fetch should be enabled by default")
	}
	if cfg.Refresh.AutoInterval != 0 {
		t.Error("auto refresh should be off by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9000"
log_level: debug
trust_proxy: true
schema:
  source_url: https://example.test/schema.json
  fetch_timeout: 45s
  cache_dir: /var/lib/schemad
refresh:
  cooldown: 10m
  auto_interval: 6h
`)
	t.Setenv("SCHEMAD_HTTP_ADDR", ":9100")
	t.Setenv("SCHEMAD_SCHEMA_MAX_AGE", "2h")
	t.Setenv("SCHEMAD_OTEL_ENABLED", "true")
	t.Setenv("SCHEMAD_OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env overrides file", cfg.HTTPAddr, ":9100"},
		{"file log level", cfg.LogLevel, "debug"},
		{"file trust proxy", cfg.TrustProxy, true},
		{"file source url", cfg.Schema.SourceURL, "https://example.test/schema.json"},
		{"file fetch timeout", cfg.Schema.FetchTimeout, 45 * time.Second},
		{"file cache dir", cfg.Schema.CacheDir, "/var/lib/schemad"},
		{"file cooldown", cfg.Refresh.Cooldown, 10 * time.Minute},
		{"file auto interval", cfg.Refresh.AutoInterval, 6 * time.Hour},
		{"env max age", cfg.Schema.MaxAge, 2 * time.Hour},
		{"default kept", cfg.Schema.MaxBytes, int64(256 << 20)},
		{"env tracing", cfg.Tracing.Enabled, true},
		{"env tracing endpoint", cfg.Tracing.Endpoint, "http://collector:4318"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http_addr = %q", cfg.HTTPAddr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown field", file: "listen: :80\n", wantErr: "parse config"},
		{name: "bad yaml", file: "schema: [\n", wantErr: "parse config"},
		{name: "bad duration env", env: map[string]string{"SCHEMAD_REFRESH_COOLDOWN": "soon"}, wantErr: "parse env"},
		{name: "bad log level", env: map[string]string{"SCHEMAD_LOG_LEVEL": "loud"}, wantErr: "log_level"},
		{name: "bad source url", env: map[string]string{"SCHEMAD_SCHEMA_SOURCE_URL": "ftp://x/y"}, wantErr: "source_url"},
		{name: "zero cooldown", file: "refresh:\n  cooldown: 0s\n", wantErr: "refresh.cooldown"},
		{name: "negative auto interval", env: map[string]string{"SCHEMAD_REFRESH_AUTO_INTERVAL": "-1m"}, wantErr: "auto_interval"},
		{name: "sample ratio", env: map[string]string{"SCHEMAD_OTEL_SAMPLE_RATIO": "1.5"}, wantErr: "sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
