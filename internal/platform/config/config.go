package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer = "finanalysis"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string
	JWTIssuer    string

	CORSAllowedOrigins []string
	UploadMaxBytes     int64
	UploadRateLimit    string // ulule/limiter format, e.g. "30-M"

	ImmaterialThreshold     decimal.Decimal
	ClassificationRulesFile string

	GeminiAPIKey   string
	GeminiModel    string
	SummaryTimeout time.Duration

	SessionTTL           time.Duration
	SessionSweepSchedule string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("UPLOAD_MAX_BYTES", 20<<20)
	v.SetDefault("UPLOAD_RATE_LIMIT", "30-M")
	v.SetDefault("IMMATERIAL_THRESHOLD", "50")
	v.SetDefault("CLASSIFICATION_RULES_FILE", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("SUMMARY_TIMEOUT", "20s")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_SWEEP_SCHEDULE", "@every 1h")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:             v.GetString("PGSQL_URL"),
		Port:                    v.GetString("PORT"),
		IsProduction:            v.GetBool("IS_PRODUCTION"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		JWTIssuer:               v.GetString("JWT_ISSUER"),
		CORSAllowedOrigins:      splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		UploadMaxBytes:          v.GetInt64("UPLOAD_MAX_BYTES"),
		UploadRateLimit:         v.GetString("UPLOAD_RATE_LIMIT"),
		ClassificationRulesFile: v.GetString("CLASSIFICATION_RULES_FILE"),
		GeminiAPIKey:            v.GetString("GEMINI_API_KEY"),
		GeminiModel:             v.GetString("GEMINI_MODEL"),
		SessionSweepSchedule:    v.GetString("SESSION_SWEEP_SCHEDULE"),
		PosthogAPIKey:           v.GetString("POSTHOG_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set. Sessions are kept in memory.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 20 << 20
		log.Printf("Warning: Invalid UPLOAD_MAX_BYTES. Defaulting to %d.\n", cfg.UploadMaxBytes)
	}

	threshold, err := decimal.NewFromString(v.GetString("IMMATERIAL_THRESHOLD"))
	if err != nil || threshold.IsNegative() {
		threshold = decimal.NewFromInt(50)
		log.Printf("Warning: Invalid IMMATERIAL_THRESHOLD ('%s'). Defaulting to %s.\n", v.GetString("IMMATERIAL_THRESHOLD"), threshold)
	}
	cfg.ImmaterialThreshold = threshold

	cfg.SummaryTimeout = durationOrDefault(v, "SUMMARY_TIMEOUT", 20*time.Second)
	cfg.SessionTTL = durationOrDefault(v, "SESSION_TTL", 24*time.Hour)

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. AI summaries will be unavailable.")
	}

	return cfg, nil
}

func durationOrDefault(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
