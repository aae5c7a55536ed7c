package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
)

func proof(id string, created time.Time) *domain.VaccineProof {
	return &domain.VaccineProof{
		ID:          id,
		HolderName:  "Grace Hopper",
		VaccineCode: "J07BX03",
		DoseNumber:  2,
		Issuer:      "navy",
		Status:      domain.ProofActive,
		CreatedAt:   created,
	}
}

func TestMemoryStore_CreateGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	p := proof("p-1", time.Time{})
	if err := store.CreateProof(ctx, p); err != nil {
		t.Fatalf("CreateProof() error = %v", err)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("CreateProof() should stamp timestamps")
	}

	got, err := store.GetProof(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetProof() error = %v", err)
	}
	if got.HolderName != "Grace Hopper" {
		t.Errorf("HolderName = %q", got.HolderName)
	}

	// Mutating the returned copy must not change the stored proof.
	got.Status = domain.ProofRevoked
	again, _ := store.GetProof(ctx, "p-1")
	if again.Status != domain.ProofActive {
		t.Error("store shares memory with callers")
	}

	if err := store.CreateProof(ctx, proof("p-1", time.Time{})); err == nil {
		t.Error("CreateProof() duplicate should fail")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetProof(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("GetProof() error = %v, want not_found", err)
	}
	if err := store.SaveProof(ctx, proof("missing", time.Now())); !domain.IsNotFound(err) {
		t.Errorf("SaveProof() error = %v, want not_found", err)
	}
	if err := store.DeleteProof(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("DeleteProof() error = %v, want not_found", err)
	}
}

func TestMemoryStore_ListProofs(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		p := proof(id, base.Add(time.Duration(i)*time.Minute))
		if id == "c" {
			p.Status = domain.ProofRevoked
		}
		if err := store.CreateProof(ctx, p); err != nil {
			t.Fatalf("CreateProof(%s) error = %v", id, err)
		}
	}

	tests := []struct {
		name string
		opts domain.ProofListOptions
		want []string
	}{
		{"all newest first", domain.ProofListOptions{}, []string{"d", "c", "b", "a"}},
		{"status filter", domain.ProofListOptions{Status: domain.ProofRevoked}, []string{"c"}},
		{"limit and offset", domain.ProofListOptions{Limit: 2, Offset: 1}, []string{"c", "b"}},
		{"offset past end", domain.ProofListOptions{Offset: 10}, []string{}},
		{"holder mismatch", domain.ProofListOptions{HolderName: "nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListProofs(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListProofs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListProofs() returned %d proofs, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Errorf("ListProofs()[%d] = %s, want %s", i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.CreateProof(ctx, proof("shared", time.Now())); err != nil {
		t.Fatalf("CreateProof() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.GetProof(ctx, "shared")
			if err != nil {
				t.Errorf("GetProof() error = %v", err)
				return
			}
			p.DoseNumber++
			if err := store.SaveProof(ctx, p); err != nil {
				t.Errorf("SaveProof() error = %v", err)
			}
		}()
	}
	wg.Wait()
}
