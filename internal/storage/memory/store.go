package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// Store is an in-memory implementation of ProofStore
type Store struct {
	mu     sync.RWMutex
	proofs map[string]*domain.VaccineProof
}

var _ ports.ProofStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		proofs: make(map[string]*domain.VaccineProof),
	}
}

func notFound(id string) error {
	return domain.ErrNotFound(fmt.Sprintf("vaccine proof %s not found", id)).
		WithCode(domain.ErrorCodeProofNotFound)
}

// clone copies a proof so callers never share memory with the store.
func clone(p *domain.VaccineProof) *domain.VaccineProof {
	c := *p
	if p.RevokedAt != nil {
		t := *p.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

func (s *Store) CreateProof(ctx context.Context, proof *domain.VaccineProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.proofs[proof.ID]; exists {
		return domain.ErrConflict(fmt.Sprintf("vaccine proof %s already exists", proof.ID))
	}

	now := time.Now().UTC()
	if proof.CreatedAt.IsZero() {
		proof.CreatedAt = now
	}
	proof.UpdatedAt = now

	s.proofs[proof.ID] = clone(proof)
	return nil
}

func (s *Store) GetProof(ctx context.Context, id string) (*domain.VaccineProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proof, exists := s.proofs[id]
	if !exists {
		return nil, notFound(id)
	}

	return clone(proof), nil
}

func (s *Store) ListProofs(ctx context.Context, opts domain.ProofListOptions) ([]*domain.VaccineProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.VaccineProof
	for _, p := range s.proofs {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		if opts.HolderName != "" && p.HolderName != opts.HolderName {
			continue
		}
		if opts.Issuer != "" && p.Issuer != opts.Issuer {
			continue
		}
		result = append(result, clone(p))
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	limit := opts.Limit
	if limit == 0 {
		limit = 100 // default limit
	}
	if opts.Offset >= len(result) {
		return []*domain.VaccineProof{}, nil
	}
	end := opts.Offset + limit
	if end > len(result) {
		end = len(result)
	}

	return result[opts.Offset:end], nil
}

func (s *Store) SaveProof(ctx context.Context, proof *domain.VaccineProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.proofs[proof.ID]; !exists {
		return notFound(proof.ID)
	}

	proof.UpdatedAt = time.Now().UTC()
	s.proofs[proof.ID] = clone(proof)
	return nil
}

func (s *Store) DeleteProof(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.proofs[id]; !exists {
		return notFound(id)
	}

	delete(s.proofs, id)
	return nil
}

func (s *Store) Close() error {
	return nil
}
