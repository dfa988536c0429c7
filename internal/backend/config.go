package backend

import (
	"fmt"

	"rehabcenter/internal/archive"
	"rehabcenter/internal/config"
)

// FromAppConfig picks the storage, archive and mirror settings out of the
// process configuration.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("no configuration loaded")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type %q, want one of %v", appConfig.DataBackend, GetBackendTypes())
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,
		Archive: ArchiveConfig{
			Driver: archive.Driver(appConfig.ArchiveDriver),
			Dir:    appConfig.ArchiveDir,
			S3: archive.S3Config{
				Bucket:    appConfig.ArchiveS3Bucket,
				Region:    appConfig.ArchiveS3Region,
				Endpoint:  appConfig.ArchiveS3Endpoint,
				PathStyle: appConfig.ArchiveS3PathStyle,
			},
		},
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSummarySheet:  appConfig.GoogleSummarySheet,
	}, nil
}

// Validate checks that the selected store has what it needs to open.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for the sqlite store")
		}
	case PostgresBackend, MySQLBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for %s backend", c.Type)
		}
	case MemoryBackend:
	}

	if c.Archive.Driver != "" && !c.Archive.Driver.IsValid() {
		return fmt.Errorf("invalid archive driver: %s", c.Archive.Driver)
	}
	return nil
}

// GetBackendTypes lists the stores in the order they are documented.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend, MySQLBackend}
}
