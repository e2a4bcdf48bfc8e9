// Package config provides application configuration loaded from environment
// variables. All configuration is externalized so the same binaries run in
// local development (via a .env file) and in deployment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-insights/internal/signals"
)

// AppConfig holds all application configuration.
// Load it once at startup using Load().
type AppConfig struct {
	// ProjectID is the GCP project hosting the insights dataset.
	ProjectID string

	// DatasetID is the BigQuery dataset for insight persistence.
	DatasetID string

	// CatalogBucket and CatalogObject locate the recommendation catalog in
	// GCS. When CatalogPath is set it takes precedence and the catalog is
	// read from the local filesystem instead.
	CatalogBucket string
	CatalogObject string
	CatalogPath   string

	// Enrichment contains settings for the Gemini collaborators.
	Enrichment EnrichmentConfig

	// Signals contains tunable signal-extraction thresholds.
	Signals SignalConfig

	// CacheTTL is how long extracted SignalSets stay valid in the cache.
	CacheTTL time.Duration

	// Blocklist names product categories that partner offers are never
	// allowed to carry.
	Blocklist []string

	// Notion contains settings for the compliance review sync.
	Notion NotionConfig
}

// EnrichmentConfig holds settings for the optional Gemini-backed content
// enrichment and tone scoring. Both fall back to local deterministic
// implementations when disabled or on timeout.
type EnrichmentConfig struct {
	// ContentEnabled turns on Gemini body-text enrichment.
	ContentEnabled bool

	// ToneEnabled turns on Gemini tone scoring.
	ToneEnabled bool

	// Model is the Gemini model name.
	Model string

	// Timeout bounds each collaborator call.
	Timeout time.Duration
}

// SignalConfig holds the configurable extraction thresholds. Defaults are
// documented in DESIGN.md.
type SignalConfig struct {
	// CadenceToleranceDays is the +/- tolerance when matching weekly or
	// monthly subscription cadence and payroll frequency buckets.
	CadenceToleranceDays float64

	// IncomeVariationThreshold is the coefficient-of-variation cutoff above
	// which income counts as variable.
	IncomeVariationThreshold float64
}

// Thresholds converts the signal configuration into extraction thresholds,
// keeping the documented defaults for values without an environment knob.
func (c *SignalConfig) Thresholds() signals.Thresholds {
	t := signals.DefaultThresholds()
	t.CadenceToleranceDays = c.CadenceToleranceDays
	t.IncomeVariationThreshold = c.IncomeVariationThreshold
	return t
}

// NotionConfig holds settings for the review database sync.
type NotionConfig struct {
	APIKey     string
	DatabaseID string
}

// Load loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func Load() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		ProjectID:     getEnv("GCP_PROJECT", ""),
		DatasetID:     getEnv("INSIGHTS_DATASET", "insights"),
		CatalogBucket: getEnv("CATALOG_BUCKET", ""),
		CatalogObject: getEnv("CATALOG_OBJECT", "catalog/catalog.json"),
		CatalogPath:   getEnv("CATALOG_PATH", ""),
		Enrichment: EnrichmentConfig{
			ContentEnabled: getEnvBool("ENRICHMENT_ENABLED", false),
			ToneEnabled:    getEnvBool("TONE_SCORING_ENABLED", false),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:        getEnvDuration("ENRICHMENT_TIMEOUT", 10*time.Second),
		},
		Signals: SignalConfig{
			CadenceToleranceDays:     getEnvFloat("CADENCE_TOLERANCE_DAYS", 3),
			IncomeVariationThreshold: getEnvFloat("INCOME_VARIATION_THRESHOLD", 0.25),
		},
		CacheTTL:  getEnvDuration("SIGNAL_CACHE_TTL", 15*time.Minute),
		Blocklist: getEnvList("BLOCKED_PRODUCT_CATEGORIES", []string{"payday_loan", "pawn_loan"}),
		Notion: NotionConfig{
			APIKey:     getEnv("NOTION_API_KEY", ""),
			DatabaseID: getEnv("NOTION_REVIEW_DATABASE_ID", ""),
		},
	}
}

// getEnvList returns a comma-separated environment variable as a slice or a
// default.
func getEnvList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
