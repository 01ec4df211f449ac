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

// GoogleSheetsConfig holds the service account and spreadsheet identifiers.
type GoogleSheetsConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SourceSheetID       string
	DestinationSheetID  string
}

// Configured reports whether service account credentials are present.
func (g GoogleSheetsConfig) Configured() bool {
	return g.ServiceAccountEmail != "" && g.PrivateKey != ""
}

// TwilioConfig holds Lookup API credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
}

// AmplemarketConfig holds contact-search API settings.
type AmplemarketConfig struct {
	APIKey  string
	BaseURL string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	LogLevel          string
	LogFormat         string
	TokenTTL          time.Duration
	CookieSecure      bool
	AttemptStore      string
	CarrierLookup     string
	RateLimitValidate RateLimitConfig
	RateLimitEnrich   RateLimitConfig
	Sheets            GoogleSheetsConfig
	Twilio            TwilioConfig
	Amplemarket       AmplemarketConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		TokenTTL:      parseDuration(getEnv("JWT_TTL", "8h")),
		CookieSecure:  parseBool(getEnv("COOKIE_SECURE", "false")),
		AttemptStore:  strings.ToLower(getEnv("ATTEMPT_STORE", "memory")),
		CarrierLookup: strings.ToLower(getEnv("CARRIER_LOOKUP", "twilio")),
		Sheets: GoogleSheetsConfig{
			ServiceAccountEmail: os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
			PrivateKey:          strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
			SourceSheetID:       os.Getenv("GOOGLE_SHEET_ID"),
			DestinationSheetID:  os.Getenv("GOOGLE_SHEET_ID_DESTINATION"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			BaseURL:    getEnv("TWILIO_BASE_URL", "https://lookups.twilio.com"),
		},
		Amplemarket: AmplemarketConfig{
			APIKey:  os.Getenv("AMPLEMARKET_API_KEY"),
			BaseURL: getEnv("AMPLEMARKET_BASE_URL", "https://api.amplemarket.com"),
		},
	}

	switch cfg.AttemptStore {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("invalid ATTEMPT_STORE value: %q", cfg.AttemptStore)
	}
	switch cfg.CarrierLookup {
	case "twilio", "offline":
	default:
		return nil, fmt.Errorf("invalid CARRIER_LOOKUP value: %q", cfg.CarrierLookup)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_VALIDATE", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_VALIDATE value: %w", err)
	}
	cfg.RateLimitValidate = rl

	rl, err = parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = rl

	return cfg, nil
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

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 8 * time.Hour
	}
	return d
}

func parseBool(input string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return false
	}
	return b
}
