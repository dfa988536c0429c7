package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
var Backends = []string{"memory", "sqlite", "postgres", "mysql"}

type Config struct {
	// HTTP Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	// StatsCacheTTL keeps /api/stats answers this long, 0 disables caching
	StatsCacheTTL time.Duration

	// Database
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// AMQP, empty URL disables events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Duplicate detection
	SpareDuplicatePolicy string
	AuditDebounce        time.Duration
	// WorkerMetricsPort serves /metrics from the audit worker, empty disables it
	WorkerMetricsPort string

	// Export archive
	ArchiveDriver      string
	ArchiveDir         string
	ArchiveS3Bucket    string
	ArchiveS3Region    string
	ArchiveS3Endpoint  string
	ArchiveS3PathStyle bool

	// Google Sheets summary mirror, empty ID disables it
	GoogleSpreadsheetID string
	GoogleSummarySheet  string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		StatsCacheTTL:   getEnvDuration("STATS_CACHE_TTL", 30*time.Second),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/rehab.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rehabcenter"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		SpareDuplicatePolicy: getEnv("SPARE_DUPLICATE_POLICY", "require_both"),
		AuditDebounce:        getEnvDuration("AUDIT_DEBOUNCE", 5*time.Second),
		WorkerMetricsPort:    getEnv("WORKER_METRICS_PORT", ""),

		ArchiveDriver:      getEnv("ARCHIVE_DRIVER", "none"),
		ArchiveDir:         getEnv("ARCHIVE_DIR", ""),
		ArchiveS3Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchiveS3Region:    getEnv("ARCHIVE_S3_REGION", ""),
		ArchiveS3Endpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
		ArchiveS3PathStyle: getEnvBool("ARCHIVE_S3_PATH_STYLE", false),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSummarySheet:  getEnv("GOOGLE_SUMMARY_SHEET", "Summary"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			errors = append(errors, fmt.Sprintf("DATABASE_URL is required when using %s backend", c.DataBackend))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.SpareDuplicatePolicy {
	case "require_both", "exact_tuple":
	default:
		errors = append(errors, fmt.Sprintf("invalid spare duplicate policy '%s': must be require_both or exact_tuple", c.SpareDuplicatePolicy))
	}

	if c.AuditDebounce < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid audit debounce %v: must be at least 100ms", c.AuditDebounce))
	} else if c.AuditDebounce > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid audit debounce %v: must be at most 1 hour", c.AuditDebounce))
	}

	if c.WorkerMetricsPort != "" {
		if port, err := strconv.Atoi(c.WorkerMetricsPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid worker metrics port '%s'", c.WorkerMetricsPort))
		} else if c.WorkerMetricsPort == c.Port {
			errors = append(errors, fmt.Sprintf("worker metrics port %s clashes with PORT", c.WorkerMetricsPort))
		}
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.StatsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid stats cache ttl %v: must not be negative", c.StatsCacheTTL))
	}

	switch c.ArchiveDriver {
	case "none":
	case "fs":
		if c.ArchiveDir == "" {
			errors = append(errors, "ARCHIVE_DIR is required when ARCHIVE_DRIVER is fs")
		}
	case "s3":
		if c.ArchiveS3Bucket == "" {
			errors = append(errors, "ARCHIVE_S3_BUCKET is required when ARCHIVE_DRIVER is s3")
		}
		if c.ArchiveS3Endpoint != "" {
			if u, err := url.Parse(c.ArchiveS3Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("invalid ARCHIVE_S3_ENDPOINT '%s': must be an absolute URL", c.ArchiveS3Endpoint))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid archive driver '%s': must be one of none, fs, s3", c.ArchiveDriver))
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleSummarySheet) == "" {
		errors = append(errors, "GOOGLE_SUMMARY_SHEET cannot be empty when GOOGLE_SPREADSHEET_ID is set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// EventsEnabled reports whether record-changed events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// MirrorEnabled reports whether monthly summaries go to Google Sheets.
func (c *Config) MirrorEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
