package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	LogLevel    string

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Snapshot archive
	SnapshotsEnabled bool
	SnapshotInterval time.Duration
	S3               S3Config

	Analytics AnalyticsConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// AnalyticsConfig tunes the report windows
type AnalyticsConfig struct {
	InvestmentCategory string
	TrendWindow        int
	ShortWindow        int
	ForecastMonths     int
	// InvalidationDelay coalesces report.invalidated pushes during bursts of writes
	InvalidationDelay time.Duration
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("SNAPSHOTS_ENABLED", false)
	v.SetDefault("SNAPSHOT_INTERVAL", "24h")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "fortuna-snapshots")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_ENDPOINT", "") // Empty = use AWS, set for MinIO/LocalStack
	v.SetDefault("ANALYTICS_INVESTMENT_CATEGORY", "Investment")
	v.SetDefault("ANALYTICS_TREND_WINDOW", 6)
	v.SetDefault("ANALYTICS_SHORT_WINDOW", 3)
	v.SetDefault("ANALYTICS_FORECAST_MONTHS", 3)
	v.SetDefault("ANALYTICS_INVALIDATION_DELAY", "500ms")
}

// Load reads configuration from a .env file, when present, and the environment
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		Port:               v.GetString("PORT"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		Env:                v.GetString("ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		SnapshotsEnabled:   v.GetBool("SNAPSHOTS_ENABLED"),
		SnapshotInterval:   v.GetDuration("SNAPSHOT_INTERVAL"),
		S3: S3Config{
			Region:          v.GetString("S3_REGION"),
			Bucket:          v.GetString("S3_BUCKET"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
		},
		Analytics: AnalyticsConfig{
			InvestmentCategory: v.GetString("ANALYTICS_INVESTMENT_CATEGORY"),
			TrendWindow:        v.GetInt("ANALYTICS_TREND_WINDOW"),
			ShortWindow:        v.GetInt("ANALYTICS_SHORT_WINDOW"),
			ForecastMonths:     v.GetInt("ANALYTICS_FORECAST_MONTHS"),
			InvalidationDelay:  v.GetDuration("ANALYTICS_INVALIDATION_DELAY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Analytics.TrendWindow <= 0 || c.Analytics.ShortWindow <= 0 || c.Analytics.ForecastMonths <= 0 {
		return fmt.Errorf("analytics windows must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.SnapshotsEnabled && c.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive when snapshots are enabled")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
