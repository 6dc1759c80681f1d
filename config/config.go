package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Render    RenderConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages bounds the number of concurrently open page contexts.
	MaxPages int // default: 10

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects anti-bot-detection JS into every page before navigation.
	Stealth bool // default: false

	// HealthInterval is how often the supervisor pings the browser process.
	HealthInterval time.Duration // default: 15s
}

// RenderConfig controls the rendering pipeline. It is read once at startup
// and never re-read per request.
type RenderConfig struct {
	// Timeout is the hard deadline for a navigation to reach network idle.
	// On expiry the renderer falls back to the first captured response.
	Timeout time.Duration // default: 10s

	// Quiescence is the window with no outstanding network connections that
	// satisfies the network-idle wait condition.
	Quiescence time.Duration // default: 500ms

	// DefaultWidth/DefaultHeight are the viewport used when the request does
	// not carry explicit dimensions (full and preview modes).
	DefaultWidth  int // default: 1000
	DefaultHeight int // default: 1000

	// StaticFallback serves full-mode requests from a plain HTTP fetch
	// (sanitized but unrendered) while the browser handle is restarting.
	StaticFallback bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 10

	// Burst is the maximum burst size per identity.
	Burst int // default: 20
}

// CacheConfig controls the in-memory render response cache.
type CacheConfig struct {
	// Enabled toggles caching of full-mode responses.
	Enabled bool // default: true

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000

	// TTL is how long a cached response stays valid.
	TTL time.Duration // default: 5m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("RENDERTRON_HOST", "0.0.0.0"),
			Port: envIntOr("RENDERTRON_PORT", 3000),
			Mode: envOr("RENDERTRON_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("RENDERTRON_HEADLESS", true),
			MaxPages:       envIntOr("RENDERTRON_MAX_PAGES", 10),
			NoSandbox:      envBoolOr("RENDERTRON_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("RENDERTRON_BROWSER_BIN"),
			Stealth:        envBoolOr("RENDERTRON_STEALTH", false),
			HealthInterval: envDurationOr("RENDERTRON_HEALTH_INTERVAL", 15*time.Second),
		},
		Render: RenderConfig{
			Timeout:        envDurationOr("RENDERTRON_RENDER_TIMEOUT", 10*time.Second),
			Quiescence:     envDurationOr("RENDERTRON_QUIESCENCE", 500*time.Millisecond),
			DefaultWidth:   envIntOr("RENDERTRON_WIDTH", 1000),
			DefaultHeight:  envIntOr("RENDERTRON_HEIGHT", 1000),
			StaticFallback: envBoolOr("RENDERTRON_STATIC_FALLBACK", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("RENDERTRON_AUTH_ENABLED", false),
			APIKeys: envSliceOr("RENDERTRON_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RENDERTRON_RATE_RPS", 10.0),
			Burst:             envIntOr("RENDERTRON_RATE_BURST", 20),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("RENDERTRON_CACHE_ENABLED", true),
			MaxEntries: envIntOr("RENDERTRON_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("RENDERTRON_CACHE_TTL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("RENDERTRON_LOG_LEVEL", "info"),
			Format: envOr("RENDERTRON_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
