// Package sqlite provides the SQLite proof store adapter.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/sqldb"
)

// Provider implements ports.ProofStore using SQLite.
// It wraps the sqldb implementation.
type Provider struct {
	*sqldb.Store
}

// NewProvider creates a new SQLite proof store, creating the parent
// directory of path when it is a plain file path.
func NewProvider(path string) (*Provider, error) {
	if isFilePath(path) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}

	store, err := sqldb.NewSQLite(path)
	if err != nil {
		return nil, err
	}

	// A :memory: database is per connection.
	if path == ":memory:" {
		store.DB().SetMaxOpenConns(1)
	}

	return &Provider{
		Store: store,
	}, nil
}

func isFilePath(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}

// Ensure Provider implements ports.ProofStore at compile time.
var _ ports.ProofStore = (*Provider)(nil)
