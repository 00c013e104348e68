package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "3001" {
		t.Errorf("port = %q, want 3001", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("request_timeout = %v, want 10s", cfg.Server.RequestTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("cors_origins = %v, want [*]", cfg.Server.CORSOrigins)
	}
	if cfg.Server.CompletionRateLimit != 60 {
		t.Errorf("completion_rate_limit = %d, want 60", cfg.Server.CompletionRateLimit)
	}
	if cfg.Server.TrustedProxy {
		t.Error("trusted_proxy should default to false")
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "outplay.db" {
		t.Errorf("database = %+v, want sqlite outplay.db", cfg.Database)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v, want info/text", cfg.Log)
	}
	if cfg.Weather.TemperatureUnit != "fahrenheit" {
		t.Errorf("temperature_unit = %q, want fahrenheit", cfg.Weather.TemperatureUnit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OUTPLAY_SERVER_PORT", "8181")
	t.Setenv("OUTPLAY_SERVER_REQUEST_TIMEOUT", "3s")
	t.Setenv("OUTPLAY_SERVER_CORS_ORIGINS", "http://localhost:5173, https://outplay.example")
	t.Setenv("OUTPLAY_DATABASE_DRIVER", "postgres")
	t.Setenv("OUTPLAY_DATABASE_DSN", "postgres://outplay@localhost/outplay?sslmode=disable")
	t.Setenv("OUTPLAY_LOG_LEVEL", "debug")
	t.Setenv("OUTPLAY_SERVER_TRUSTED_PROXY", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8181" {
		t.Errorf("port = %q, want 8181", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 3*time.Second {
		t.Errorf("request_timeout = %v, want 3s", cfg.Server.RequestTimeout)
	}
	want := []string{"http://localhost:5173", "https://outplay.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("cors_origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("cors_origins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Server.TrustedProxy {
		t.Error("trusted_proxy = false, want true")
	}
}

func TestLoadPlainPortFallback(t *testing.T) {
	t.Setenv("PORT", "4000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("port = %q, want 4000", cfg.Server.Port)
	}

	t.Setenv("OUTPLAY_SERVER_PORT", "5000")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("port = %q, want OUTPLAY_SERVER_PORT to win", cfg.Server.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "outplay.yaml")
	content := `
server:
  port: "9090"
  completion_rate_limit: 0
database:
  dsn: /var/lib/outplay/outplay.db
weather:
  latitude: "45.52"
  longitude: "-122.68"
  temperature_unit: celsius
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Server.CompletionRateLimit != 0 {
		t.Errorf("completion_rate_limit = %d, want 0", cfg.Server.CompletionRateLimit)
	}
	if cfg.Database.DSN != "/var/lib/outplay/outplay.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Weather.Latitude != "45.52" || cfg.Weather.TemperatureUnit != "celsius" {
		t.Errorf("weather = %+v", cfg.Weather)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: "3001", RequestTimeout: time.Second, CompletionRateLimit: 10},
			Database: DatabaseConfig{Driver: "sqlite", DSN: "x.db"},
			Log:      LogConfig{Level: "info", Format: "json"},
			Weather:  WeatherConfig{TemperatureUnit: "celsius"},
		}
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = " " }},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
		{"negative rate limit", func(c *Config) { c.Server.CompletionRateLimit = -1 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad unit", func(c *Config) { c.Weather.TemperatureUnit = "kelvin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
