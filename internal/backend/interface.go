package backend

import (
	"context"

	"rehabcenter/internal/archive"
	"rehabcenter/internal/sheets"
	"rehabcenter/internal/storage"
)

// CleanupFunc releases whatever the factory opened.
type CleanupFunc func() error

// BackendResult contains the record store and its cleanup function
type BackendResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory creates the pluggable pieces selected by configuration.
type Factory interface {
	// CreateBackend opens the record store, running migrations for SQL backends.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateArchive returns nil when archiving is disabled.
	CreateArchive(ctx context.Context, config Config) (archive.Sink, error)
	// CreateMirror returns nil when no spreadsheet is configured.
	CreateMirror(ctx context.Context, config Config) (sheets.SummaryPublisher, error)
}

// Config is the subset of process configuration the factory reads.
type Config struct {
	Type BackendType

	// sqlite
	SQLiteDBPath string
	// postgres and mysql
	DatabaseURL string

	Archive ArchiveConfig

	GoogleSpreadsheetID string
	GoogleSummarySheet  string
}

// ArchiveConfig selects the sink for copies of rendered exports.
type ArchiveConfig struct {
	Driver archive.Driver
	Dir    string
	S3     archive.S3Config
}

// BackendType names a record store implementation (DATA_BACKEND).
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MySQLBackend    BackendType = "mysql"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt is one of the supported stores.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, MySQLBackend:
		return true
	default:
		return false
	}
}

// DSN returns the connection string handed to the SQL dialect.
func (c Config) DSN() string {
	if c.Type == SQLiteBackend {
		return c.SQLiteDBPath
	}
	return c.DatabaseURL
}
