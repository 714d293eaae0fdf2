package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// PearchConfig holds settings for the candidate search vendor.
type PearchConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelays   []time.Duration
	MaxPerCall    int
	ProxyAudience string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	AutoMigrate     bool
	RedisURL        string
	JWTSecret       string
	Port            string
	TokenTTL        time.Duration
	AuthUsername    string
	AuthPassword    string
	Pearch          PearchConfig
	RateLimitSearch RateLimitConfig
	RateLimitEnrich RateLimitConfig
	SearchCacheTTL  time.Duration
	BalanceSyncSpec string
	CookieSecure    bool
	LogJSON         bool
	LogDebug        bool
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     firstEnv("DATABASE_URL", "POSTGRES_URL"),
		AutoMigrate:     parseBool(getEnv("AUTO_MIGRATE", "true"), true),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		Port:            getEnv("PORT", "8080"),
		TokenTTL:        parseDuration(getEnv("JWT_TTL", "168h"), 7*24*time.Hour),
		AuthUsername:    os.Getenv("AUTH_USERNAME"),
		AuthPassword:    os.Getenv("AUTH_PASSWORD"),
		SearchCacheTTL:  parseDuration(getEnv("SEARCH_CACHE_TTL", "1h"), time.Hour),
		BalanceSyncSpec: lookupEnv("BALANCE_SYNC_SPEC", "@every 15m"),
		CookieSecure:    parseBool(os.Getenv("COOKIE_SECURE"), false),
		LogJSON:         parseBool(os.Getenv("LOG_JSON"), false),
		LogDebug:        parseBool(os.Getenv("LOG_DEBUG"), false),
	}

	maxRetries, err := strconv.Atoi(getEnv("PEARCH_MAX_RETRIES", "2"))
	if err != nil || maxRetries < 0 {
		return nil, fmt.Errorf("invalid PEARCH_MAX_RETRIES value: %q", os.Getenv("PEARCH_MAX_RETRIES"))
	}
	maxPerCall, err := strconv.Atoi(getEnv("PEARCH_MAX_PER_CALL", "20"))
	if err != nil || maxPerCall <= 0 {
		return nil, fmt.Errorf("invalid PEARCH_MAX_PER_CALL value: %q", os.Getenv("PEARCH_MAX_PER_CALL"))
	}
	delays, err := parseDurationList(getEnv("PEARCH_RETRY_DELAYS", "1s,2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PEARCH_RETRY_DELAYS value: %w", err)
	}

	cfg.Pearch = PearchConfig{
		APIKey:        os.Getenv("PEARCH_API_KEY"),
		BaseURL:       strings.TrimRight(getEnv("PEARCH_BASE_URL", "https://api.pearch.ai"), "/"),
		Timeout:       parseDuration(getEnv("PEARCH_TIMEOUT", "60s"), 60*time.Second),
		MaxRetries:    maxRetries,
		RetryDelays:   delays,
		MaxPerCall:    maxPerCall,
		ProxyAudience: os.Getenv("PEARCH_PROXY_AUDIENCE"),
	}

	searchRL, err := parseRateLimit(getEnv("RATE_LIMIT_SEARCH", "15/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = searchRL

	enrichRL, err := parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = enrichRL

	return cfg, nil
}

// HasDatabase reports whether persistence is configured.
func (c *Config) HasDatabase() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseDurationList(value string) ([]time.Duration, error) {
	var delays []time.Duration
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid delay %q", part)
		}
		delays = append(delays, d)
	}
	if len(delays) == 0 {
		return nil, fmt.Errorf("at least one delay is required")
	}
	return delays, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// lookupEnv differs from getEnv in that an explicitly empty value wins over the fallback.
func lookupEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string, fallback bool) bool {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return v
}
