package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/dialect"
)

// Store is a SQL implementation of ProofStore that supports multiple
// database dialects.
type Store struct {
	db      *sqlx.DB
	dialect dialect.Dialect
}

var _ ports.ProofStore = (*Store)(nil)

// Config holds database connection configuration
type Config struct {
	Driver string // Driver name: sqlite, postgres
	DSN    string // Data source name / connection string
}

// New creates a new SQL store with the specified configuration.
func New(cfg Config) (*Store, error) {
	d, err := dialect.FromDriverName(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("unsupported database driver: %w", err)
	}

	db, err := sqlx.Open(d.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run dialect-specific initialization (e.g., PRAGMA for SQLite)
	for _, stmt := range d.PragmaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db, dialect: d}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLite creates a new SQLite store.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath})
}

// NewPostgres creates a new PostgreSQL store.
func NewPostgres(dsn string) (*Store, error) {
	return New(Config{Driver: "postgres", DSN: dsn})
}

// DB returns the underlying sqlx.DB for advanced operations
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) initSchema() error {
	ts := s.dialect.TimestampType()
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vaccine_proofs (
			id TEXT PRIMARY KEY,
			holder_name TEXT NOT NULL,
			vaccine_code TEXT NOT NULL,
			dose_number INTEGER NOT NULL,
			administered_at %[1]s NOT NULL,
			issuer TEXT NOT NULL,
			status TEXT NOT NULL,
			revoked_at %[1]s,
			revocation_reason TEXT,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, ts),
		`CREATE INDEX IF NOT EXISTS idx_vaccine_proofs_status ON vaccine_proofs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_vaccine_proofs_issuer ON vaccine_proofs(issuer)`,
		`CREATE INDEX IF NOT EXISTS idx_vaccine_proofs_holder ON vaccine_proofs(holder_name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return s.runMigrations()
}

func (s *Store) runMigrations() error {
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"vaccine_proofs", "holder_birth_date", "ALTER TABLE vaccine_proofs ADD COLUMN holder_birth_date TEXT"},
	}

	for _, m := range migrations {
		exists, err := s.columnExists(m.table, m.column)
		if err != nil {
			return fmt.Errorf("failed to check column %s.%s: %w", m.table, m.column, err)
		}
		if !exists {
			if _, err := s.db.Exec(m.ddl); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", m.table, m.column, err)
			}
		}
	}

	return nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	var count int
	err := s.db.QueryRow(s.dialect.ColumnExistsQuery(), table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// proofRow is the column layout of vaccine_proofs.
type proofRow struct {
	ID               string         `db:"id"`
	HolderName       string         `db:"holder_name"`
	HolderBirthDate  sql.NullString `db:"holder_birth_date"`
	VaccineCode      string         `db:"vaccine_code"`
	DoseNumber       int            `db:"dose_number"`
	AdministeredAt   time.Time      `db:"administered_at"`
	Issuer           string         `db:"issuer"`
	Status           string         `db:"status"`
	RevokedAt        sql.NullTime   `db:"revoked_at"`
	RevocationReason sql.NullString `db:"revocation_reason"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const proofColumns = `id, holder_name, holder_birth_date, vaccine_code, dose_number, administered_at,
	issuer, status, revoked_at, revocation_reason, created_at, updated_at`

func toRow(p *domain.VaccineProof) proofRow {
	row := proofRow{
		ID:               p.ID,
		HolderName:       p.HolderName,
		HolderBirthDate:  sql.NullString{String: p.HolderBirthDate, Valid: p.HolderBirthDate != ""},
		VaccineCode:      p.VaccineCode,
		DoseNumber:       p.DoseNumber,
		AdministeredAt:   p.AdministeredAt.UTC(),
		Issuer:           p.Issuer,
		Status:           string(p.Status),
		RevocationReason: sql.NullString{String: p.RevocationReason, Valid: p.RevocationReason != ""},
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
	if p.RevokedAt != nil {
		row.RevokedAt = sql.NullTime{Time: p.RevokedAt.UTC(), Valid: true}
	}
	return row
}

func (r proofRow) toProof() *domain.VaccineProof {
	p := &domain.VaccineProof{
		ID:               r.ID,
		HolderName:       r.HolderName,
		HolderBirthDate:  r.HolderBirthDate.String,
		VaccineCode:      r.VaccineCode,
		DoseNumber:       r.DoseNumber,
		AdministeredAt:   r.AdministeredAt.UTC(),
		Issuer:           r.Issuer,
		Status:           domain.ProofStatus(r.Status),
		RevocationReason: r.RevocationReason.String,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if r.RevokedAt.Valid {
		t := r.RevokedAt.Time.UTC()
		p.RevokedAt = &t
	}
	return p
}

func notFound(id string) error {
	return domain.ErrNotFound(fmt.Sprintf("vaccine proof %s not found", id)).
		WithCode(domain.ErrorCodeProofNotFound)
}

func (s *Store) CreateProof(ctx context.Context, proof *domain.VaccineProof) error {
	now := time.Now().UTC()
	if proof.CreatedAt.IsZero() {
		proof.CreatedAt = now
	}
	proof.UpdatedAt = now

	query := s.dialect.Rebind(`INSERT INTO vaccine_proofs (` + proofColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	r := toRow(proof)
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.HolderName, r.HolderBirthDate, r.VaccineCode, r.DoseNumber, r.AdministeredAt,
		r.Issuer, r.Status, r.RevokedAt, r.RevocationReason, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vaccine proof: %w", err)
	}

	return nil
}

func (s *Store) GetProof(ctx context.Context, id string) (*domain.VaccineProof, error) {
	query := s.dialect.Rebind(`SELECT ` + proofColumns + ` FROM vaccine_proofs WHERE id = ?`)

	var row proofRow
	err := s.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccine proof: %w", err)
	}

	return row.toProof(), nil
}

func (s *Store) ListProofs(ctx context.Context, opts domain.ProofListOptions) ([]*domain.VaccineProof, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.HolderName != "" {
		where = append(where, "holder_name = ?")
		args = append(args, opts.HolderName)
	}
	if opts.Issuer != "" {
		where = append(where, "issuer = ?")
		args = append(args, opts.Issuer)
	}

	query := `SELECT ` + proofColumns + ` FROM vaccine_proofs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"

	limit := opts.Limit
	if limit == 0 {
		limit = 100 // default limit
	}
	args = append(args, limit, opts.Offset)

	var rows []proofRow
	if err := s.db.SelectContext(ctx, &rows, s.dialect.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query vaccine proofs: %w", err)
	}

	proofs := make([]*domain.VaccineProof, 0, len(rows))
	for _, r := range rows {
		proofs = append(proofs, r.toProof())
	}
	return proofs, nil
}

func (s *Store) SaveProof(ctx context.Context, proof *domain.VaccineProof) error {
	proof.UpdatedAt = time.Now().UTC()

	query := s.dialect.Rebind(`UPDATE vaccine_proofs SET
	          holder_name = ?, holder_birth_date = ?, vaccine_code = ?, dose_number = ?,
	          administered_at = ?, issuer = ?, status = ?, revoked_at = ?, revocation_reason = ?,
	          updated_at = ?
	          WHERE id = ?`)

	r := toRow(proof)
	result, err := s.db.ExecContext(ctx, query,
		r.HolderName, r.HolderBirthDate, r.VaccineCode, r.DoseNumber,
		r.AdministeredAt, r.Issuer, r.Status, r.RevokedAt, r.RevocationReason,
		r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to save vaccine proof: %w", err)
	}

	return checkAffected(result, proof.ID)
}

func (s *Store) DeleteProof(ctx context.Context, id string) error {
	query := s.dialect.Rebind(`DELETE FROM vaccine_proofs WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete vaccine proof: %w", err)
	}

	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
