package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Local durable cache
	SQLiteDBPath string

	// AMQP (optional; mutations still apply locally without it)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote snapshot store
	StoreBackend      string // "memory" or "firestore"
	FirestoreProject  string
	FirestoreDatabase string
	FirestoreAPIKey   string
	GroupDocID        string
	PollInterval      time.Duration

	// Sync behaviour
	SyncTimeout     time.Duration // initial remote sync deadline
	PushMaxAttempts int
	PushBaseDelay   time.Duration

	// Sessions
	JWTSecret  string
	SessionTTL time.Duration

	// Narrative insights
	GeminiAPIKey string
	GeminiModel  string
}

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
)

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/chittrack.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "chittrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_sync"),

		StoreBackend:      getEnv("STORE_BACKEND", BackendMemory),
		FirestoreProject:  getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreDatabase: getEnv("FIRESTORE_DATABASE", "(default)"),
		FirestoreAPIKey:   getEnv("FIRESTORE_API_KEY", ""),
		GroupDocID:        getEnv("GROUP_DOC_ID", "main-group-v1"),
		PollInterval:      getEnvDuration("POLL_INTERVAL", 15*time.Second),

		SyncTimeout:     getEnvDuration("SYNC_TIMEOUT", 10*time.Second),
		PushMaxAttempts: getEnvInt("PUSH_MAX_ATTEMPTS", 5),
		PushBaseDelay:   getEnvDuration("PUSH_BASE_DELAY", time.Second),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

// Validate checks the configuration and returns every problem in one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, "FIRESTORE_PROJECT_ID is required when using the firestore backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s]",
			c.StoreBackend, BackendMemory, BackendFirestore))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GroupDocID == "" {
		errs = append(errs, "group document id cannot be empty")
	}
	if c.PollInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid poll interval %v: must be at least 1 second", c.PollInterval))
	}
	if c.SyncTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync timeout %v: must be at least 1 second", c.SyncTimeout))
	}
	if c.PushMaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("invalid push max attempts %d: must be at least 1", c.PushMaxAttempts))
	}
	if c.PushBaseDelay <= 0 {
		errs = append(errs, fmt.Sprintf("invalid push base delay %v: must be positive", c.PushBaseDelay))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET must be set")
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
