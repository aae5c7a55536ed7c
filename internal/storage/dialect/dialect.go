// Package dialect hides the SQL differences between the proof store backends.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect is what the proof store needs to know about a SQL backend.
type Dialect interface {
	// DriverName is the database/sql driver to open.
	DriverName() string

	// Rebind rewrites ? placeholders into the backend's bind style.
	Rebind(query string) string

	// TimestampType is the column type for proof timestamps.
	TimestampType() string

	// PragmaStatements run once after the connection is opened.
	PragmaStatements() []string

	// ColumnExistsQuery takes (table, column) and returns a count.
	ColumnExistsQuery() string
}

// FromDriverName picks the dialect for a storage driver name.
func FromDriverName(driverName string) (Dialect, error) {
	switch strings.ToLower(driverName) {
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql", "pq":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driverName)
	}
}

// sqliteDialect targets modernc.org/sqlite.
type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return sqlx.Rebind(sqlx.QUESTION, query) }

func (sqliteDialect) TimestampType() string { return "TIMESTAMP" }

func (sqliteDialect) PragmaStatements() []string {
	return []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
}

func (sqliteDialect) ColumnExistsQuery() string {
	return `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
}

// postgresDialect targets github.com/lib/pq.
type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) Rebind(query string) string { return sqlx.Rebind(sqlx.DOLLAR, query) }

func (postgresDialect) TimestampType() string { return "TIMESTAMP WITH TIME ZONE" }

func (postgresDialect) PragmaStatements() []string { return nil }

func (postgresDialect) ColumnExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.columns WHERE table_name = $1 AND column_name = $2`
}
