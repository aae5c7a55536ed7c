package ports

import (
	"context"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
)

// ProofStore defines the interface for vaccine proof storage.
// Implementations: SQL (SQLite, PostgreSQL), in-memory.
type ProofStore interface {
	// CreateProof stores a new proof. The caller assigns the ID.
	CreateProof(ctx context.Context, proof *domain.VaccineProof) error

	// GetProof retrieves a proof by ID. Missing proofs yield a not_found APIError.
	GetProof(ctx context.Context, id string) (*domain.VaccineProof, error)

	// ListProofs lists proofs matching the options, newest first.
	ListProofs(ctx context.Context, opts domain.ProofListOptions) ([]*domain.VaccineProof, error)

	// SaveProof overwrites an existing proof.
	SaveProof(ctx context.Context, proof *domain.VaccineProof) error

	// DeleteProof removes a proof.
	DeleteProof(ctx context.Context, id string) error

	// Close closes the storage connection
	Close() error
}
