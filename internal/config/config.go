package config

import (
	"os"
	"strconv"
	"time"

	"skybook/internal/cache"
	"skybook/internal/database"
	"skybook/internal/messaging"
	"skybook/internal/search"
)

type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// StoreBackend selects "postgres" or "memory". The memory backend exists
	// for local development and tests; it honors the same locking contract.
	StoreBackend string
	// LockWait bounds how long a transaction waits for a contended seat
	// counter before failing as retryable.
	LockWait time.Duration

	CacheEnabled  bool
	SearchEnabled bool
	NATSEnabled   bool

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch search.Config
}

// Load reads configuration from environment variables.
func Load() *Config {
	lockWait := time.Duration(getEnvInt("LOCK_WAIT_MS", 5000)) * time.Millisecond

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		LockWait:     lockWait,

		CacheEnabled:  getEnv("CACHE_ENABLED", "true") == "true",
		SearchEnabled: getEnv("SEARCH_ENABLED", "true") == "true",
		NATSEnabled:   getEnv("NATS_ENABLED", "true") == "true",

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "skybook"),
			Password:           getEnv("DB_PASSWORD", "skybook123"),
			DBName:             getEnv("DB_NAME", "skybook"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
			LockTimeout:        lockWait,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "skybook"),
			ClientID:  getEnv("NATS_CLIENT_ID", "skybook-api"),
		},

		Valkey: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TTLSec:   getEnvInt("VALKEY_TTL_SEC", 30),
		},

		Elasticsearch: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_INDEX", "flights"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
