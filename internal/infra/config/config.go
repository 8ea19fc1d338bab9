// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the engine's environment configuration.
type Config struct {
	Port string

	// SessionID identifies the storefront session this engine serves.
	// Every engine of the same session shares the cache namespace.
	SessionID string

	// Commerce backend.
	CommerceCoreEndpoint string
	CommerceBaseURL      string
	StoreViewCode        string
	StoreCode            string
	CommerceTimeout      time.Duration
	LoginTimeout         time.Duration

	// Section cache. Empty RedisAddr falls back to the in-memory cache.
	RedisAddr     string
	RedisPassword string
	SectionTTL    time.Duration

	// Durable cart identity. DatabaseURL selects Postgres; otherwise
	// Firestore when a project id is configured; otherwise in-memory.
	DatabaseURL        string
	FirestoreProjectID string

	FirebaseProjectID string

	// GCSBucket hosts the published per-country config sheets.
	GCSBucket   string
	ConfigEnv   string
	GCPCreds    string
	GCPProject  string
	SecretNames []string

	// AnalyticsEndpoint is the data layer collector. Empty disables
	// emission.
	AnalyticsEndpoint string

	// AllowedOrigins is the comma-separated CORS allow list.
	AllowedOrigins string
}

// Load reads the environment and returns the Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		SessionID: getenvDefault("STOREFRONT_SESSION_ID", "local-session"),

		CommerceCoreEndpoint: os.Getenv("COMMERCE_CORE_ENDPOINT"),
		CommerceBaseURL:      os.Getenv("COMMERCE_BASE_URL"),
		StoreViewCode:        getenvDefault("COMMERCE_STORE_VIEW_CODE", "default"),
		StoreCode:            getenvDefault("COMMERCE_STORE_CODE", "main_website_store"),
		CommerceTimeout:      getenvDuration("COMMERCE_TIMEOUT", 10*time.Second),
		LoginTimeout:         getenvDuration("LOGIN_TIMEOUT", 6*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SectionTTL:    getenvDuration("SECTION_TTL", 24*time.Hour),

		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),

		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		GCSBucket:  os.Getenv("GCS_BUCKET"),
		ConfigEnv:  getenvDefault("CONFIG_ENV", "prod"),
		GCPCreds:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GCPProject: defaultProject,

		AnalyticsEndpoint: os.Getenv("ANALYTICS_ENDPOINT"),

		AllowedOrigins: getenvDefault("ALLOWED_ORIGINS", "*"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
