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
	Capture   CaptureConfig
	Store     StoreConfig
	Input     InputConfig
	LLM       LLMConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL string

	// Proxy is the proxy URL for all browser and probe traffic.
	Proxy string

	// Stealth masks navigator.webdriver and friends on every new document.
	Stealth bool // default: true

	// UserAgent is sent as an extra header when non-empty.
	UserAgent string
}

// CaptureConfig controls one article capture.
type CaptureConfig struct {
	// ContentSelector locates the content container.
	ContentSelector string // default: ".story-content"

	// TitleSelector locates the heading inside the container.
	TitleSelector string // default: "h1"

	// DateSelector locates the publication date inside the container.
	DateSelector string // default: ".story-source"

	// PhotoMarker is the URL segment identifying the embedded photo response.
	PhotoMarker string // default: "ShowPhoto"

	// ContentWaitTimeout bounds the wait for the content container. Hard.
	ContentWaitTimeout time.Duration // default: 10s

	// SettleDelay is the pause after content appears before the image wait.
	SettleDelay time.Duration // default: 2s

	// ImageWaitTimeout bounds the wait for the photo. Soft.
	ImageWaitTimeout time.Duration // default: 6s

	// SessionGap is the minimum spacing between browser sessions in a batch.
	SessionGap time.Duration // default: 1s
}

// StoreConfig controls the on-disk article layout.
type StoreConfig struct {
	// OutputDir is the root holding one folder per article.
	OutputDir string // default: "output"

	// TitlePolicy is "sanitize" or "reject".
	TitlePolicy string // default: "sanitize"
}

// InputConfig locates inputs read from disk.
type InputConfig struct {
	// CookieFile holds the raw cookie header.
	CookieFile string // default: "cookie"
}

// LLMConfig controls the coding step.
type LLMConfig struct {
	// BaseURL of an OpenAI-compatible API.
	BaseURL string // default: Gemini's OpenAI-compatible endpoint

	Model  string // default: "gemini-2.5-flash-lite"
	APIKey string

	// PromptFile holds the coding prompt. Empty uses the built-in prompt.
	PromptFile string

	// Timeout bounds each completion call.
	Timeout time.Duration // default: 120s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the capture result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached captures.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("NEWSGRAB_HOST", "127.0.0.1"),
			Port: envIntOr("NEWSGRAB_PORT", 8080),
			Mode: envOr("NEWSGRAB_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("NEWSGRAB_HEADLESS", true),
			NoSandbox:  envBoolOr("NEWSGRAB_NO_SANDBOX", false),
			BrowserBin: os.Getenv("NEWSGRAB_BROWSER_BIN"),
			ControlURL: os.Getenv("NEWSGRAB_CONTROL_URL"),
			Proxy:      os.Getenv("NEWSGRAB_PROXY"),
			Stealth:    envBoolOr("NEWSGRAB_STEALTH", true),
			UserAgent:  os.Getenv("NEWSGRAB_USER_AGENT"),
		},
		Capture: CaptureConfig{
			ContentSelector:    envOr("NEWSGRAB_CONTENT_SELECTOR", ".story-content"),
			TitleSelector:      envOr("NEWSGRAB_TITLE_SELECTOR", "h1"),
			DateSelector:       envOr("NEWSGRAB_DATE_SELECTOR", ".story-source"),
			PhotoMarker:        envOr("NEWSGRAB_PHOTO_MARKER", "ShowPhoto"),
			ContentWaitTimeout: envDurationOr("NEWSGRAB_CONTENT_TIMEOUT", 10*time.Second),
			SettleDelay:        envDurationOr("NEWSGRAB_SETTLE_DELAY", 2*time.Second),
			ImageWaitTimeout:   envDurationOr("NEWSGRAB_IMAGE_TIMEOUT", 6*time.Second),
			SessionGap:         envDurationOr("NEWSGRAB_SESSION_GAP", time.Second),
		},
		Store: StoreConfig{
			OutputDir:   envOr("NEWSGRAB_OUTPUT_DIR", "output"),
			TitlePolicy: envOr("NEWSGRAB_TITLE_POLICY", "sanitize"),
		},
		Input: InputConfig{
			CookieFile: envOr("NEWSGRAB_COOKIE_FILE", "cookie"),
		},
		LLM: LLMConfig{
			BaseURL:    envOr("NEWSGRAB_LLM_BASE_URL", DefaultGeminiBaseURL),
			Model:      envOr("NEWSGRAB_LLM_MODEL", "gemini-2.5-flash-lite"),
			APIKey:     envOr("NEWSGRAB_LLM_API_KEY", os.Getenv("GEMINI_KEY")),
			PromptFile: os.Getenv("NEWSGRAB_PROMPT_FILE"),
			Timeout:    envDurationOr("NEWSGRAB_LLM_TIMEOUT", 120*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("NEWSGRAB_AUTH_ENABLED", true),
			APIKeys: envSliceOr("NEWSGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("NEWSGRAB_RATE_RPS", 1.0),
			Burst:             envIntOr("NEWSGRAB_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("NEWSGRAB_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("NEWSGRAB_LOG_LEVEL", "info"),
			Format: envOr("NEWSGRAB_LOG_FORMAT", "text"),
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
