package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("default mode = %q, want release", cfg.Server.Mode)
	}
	if !cfg.Browser.Headless {
		t.Error("browser should default to headless")
	}
	if cfg.Browser.MaxPages != 10 {
		t.Errorf("default max pages = %d, want 10", cfg.Browser.MaxPages)
	}
	if cfg.Render.Timeout != 10*time.Second {
		t.Errorf("default render timeout = %v, want 10s", cfg.Render.Timeout)
	}
	if cfg.Render.Quiescence != 500*time.Millisecond {
		t.Errorf("default quiescence = %v, want 500ms", cfg.Render.Quiescence)
	}
	if cfg.Render.DefaultWidth != 1000 || cfg.Render.DefaultHeight != 1000 {
		t.Errorf("default viewport = %dx%d, want 1000x1000",
			cfg.Render.DefaultWidth, cfg.Render.DefaultHeight)
	}
	if cfg.Auth.Enabled {
		t.Error("auth should default to disabled")
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("default log format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RENDERTRON_PORT", "8080")
	t.Setenv("RENDERTRON_HEADLESS", "false")
	t.Setenv("RENDERTRON_RENDER_TIMEOUT", "30s")
	t.Setenv("RENDERTRON_AUTH_ENABLED", "true")
	t.Setenv("RENDERTRON_API_KEYS", "key1, key2 ,key3")
	t.Setenv("RENDERTRON_RATE_RPS", "2.5")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("headless override not applied")
	}
	if cfg.Render.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Render.Timeout)
	}
	if !cfg.Auth.Enabled {
		t.Error("auth override not applied")
	}
	want := []string{"key1", "key2", "key3"}
	if len(cfg.Auth.APIKeys) != len(want) {
		t.Fatalf("api keys = %v, want %v", cfg.Auth.APIKeys, want)
	}
	for i, k := range want {
		if cfg.Auth.APIKeys[i] != k {
			t.Errorf("api key[%d] = %q, want %q", i, cfg.Auth.APIKeys[i], k)
		}
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("rps = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RENDERTRON_PORT", "not-a-number")
	t.Setenv("RENDERTRON_HEADLESS", "maybe")
	t.Setenv("RENDERTRON_RENDER_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want default 3000 on bad input", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("headless should fall back to default on bad input")
	}
	if cfg.Render.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want default 10s on bad input", cfg.Render.Timeout)
	}
}
