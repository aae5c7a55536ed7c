// Package ports defines the core interfaces for the service layer.
// This file contains the hook and service method interfaces.
package ports

import (
	"context"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
)

//go:generate mockgen -package=mocks -destination=./mocks/ports.go . RevocationChecker,ProofStore

// Hook runs at a lifecycle point of a service call. It mutates hc in place and
// returns it, or fails. Returning nil is the same as returning hc.
type Hook func(ctx context.Context, hc *domain.HookContext) (*domain.HookContext, error)

// Resource implements the core methods of a service. Hooks run around these.
type Resource interface {
	Find(ctx context.Context, params domain.Params) (any, error)
	Get(ctx context.Context, id string, params domain.Params) (any, error)
	Create(ctx context.Context, data map[string]any, params domain.Params) (any, error)
	Update(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error)
	Patch(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error)
	Remove(ctx context.Context, id string, params domain.Params) (any, error)
}

// RevocationChecker answers whether a vaccine proof has been revoked.
// Implementations: store lookup (default), external webhook, cached wrapper.
type RevocationChecker interface {
	Status(ctx context.Context, id string) (*domain.RevocationStatus, error)
}
