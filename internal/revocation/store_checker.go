package revocation

import (
	"context"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// StoreChecker reads revocation status from the proof store.
type StoreChecker struct {
	store ports.ProofStore
}

// NewStoreChecker creates a checker backed by store.
func NewStoreChecker(store ports.ProofStore) *StoreChecker {
	return &StoreChecker{store: store}
}

// Status returns the stored status of id. A missing proof is not_found.
func (c *StoreChecker) Status(ctx context.Context, id string) (*domain.RevocationStatus, error) {
	proof, err := c.store.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.RevocationStatus{
		ID:        proof.ID,
		Revoked:   proof.IsRevoked(),
		Reason:    proof.RevocationReason,
		RevokedAt: proof.RevokedAt,
	}, nil
}

var _ ports.RevocationChecker = (*StoreChecker)(nil)
