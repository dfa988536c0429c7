package backend

import (
	"context"
	"fmt"

	"rehabcenter/internal/archive"
	applog "rehabcenter/internal/log"
	"rehabcenter/internal/sheets"
	gsheet "rehabcenter/internal/sheets/google"
	"rehabcenter/internal/storage"
	"rehabcenter/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentStorage)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Type == MemoryBackend {
		f.logger.WarnContext(ctx, "Using in-memory record store, data is lost on restart")
		store := memory.NewStore()
		return &BackendResult{Store: store, Cleanup: store.Close}, nil
	}

	dialect, err := storage.ParseDialect(config.Type.String())
	if err != nil {
		return nil, err
	}
	repo, err := storage.NewSQLRepository(ctx, dialect, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.Type, err)
	}

	attrs := []any{"backend", config.Type.String()}
	if config.Type == SQLiteBackend {
		attrs = append(attrs, "db_path", config.SQLiteDBPath)
	}
	f.logger.InfoContext(ctx, "Initialized SQL record store", attrs...)

	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

// CreateArchive implements Factory.CreateArchive
func (f *DefaultFactory) CreateArchive(ctx context.Context, config Config) (archive.Sink, error) {
	logger := f.logger.WithComponent(applog.ComponentArchive)

	switch config.Archive.Driver {
	case "", archive.DriverNone:
		return nil, nil
	case archive.DriverFS:
		sink, err := archive.NewFSSink(config.Archive.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize archive directory: %w", err)
		}
		logger.InfoContext(ctx, "Archiving exports to directory", "dir", config.Archive.Dir)
		return sink, nil
	case archive.DriverS3:
		sink, err := archive.NewS3Sink(ctx, config.Archive.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 archive: %w", err)
		}
		logger.InfoContext(ctx, "Archiving exports to bucket",
			"bucket", config.Archive.S3.Bucket,
			"endpoint", config.Archive.S3.Endpoint)
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", config.Archive.Driver)
	}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.SummaryPublisher, error) {
	if config.GoogleSpreadsheetID == "" {
		return nil, nil
	}
	client, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSummarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.WithComponent(applog.ComponentSheets).InfoContext(ctx, "Mirroring monthly summaries to Google Sheets",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSummarySheet)
	return client, nil
}
