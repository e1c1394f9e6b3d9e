package backend

import (
	"context"

	"kharcha/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the record store and optional cleanup function
type Result struct {
	Store   store.RecordStore
	Cleanup CleanupFunc
}

// Factory creates record stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// CSV specific
	CSVDataDir string
}

// Type represents the type of persistence backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	CSVBackend    Type = "csv"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, CSVBackend:
		return true
	default:
		return false
	}
}
