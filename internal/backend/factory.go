package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/storage"
	"kharcha/internal/store/csvfile"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case CSVBackend:
		return f.createCSVBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) (*Result, error) {
	dataDir := config.CSVDataDir
	if dataDir == "" {
		dataDir = "data"
	}

	st, err := csvfile.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize CSV store: %w", err)
	}

	f.logger.Info("Initialized CSV backend", "data_directory", dataDir)

	return &Result{
		Store:   st,
		Cleanup: nil,
	}, nil
}
