package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// DefaultReason is recorded when a revoking payload gives no reason.
const DefaultReason = "unspecified"

// HookOption configures HandleRevocation.
type HookOption func(*hookConfig)

type hookConfig struct {
	now func() time.Time
}

// WithClock sets the clock used to stamp revoked_at.
func WithClock(now func() time.Time) HookOption {
	return func(c *hookConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// HandleRevocation returns a before hook that rejects update and patch calls
// targeting a revoked proof. Other methods pass through untouched.
func HandleRevocation(checker ports.RevocationChecker, opts ...HookOption) ports.Hook {
	cfg := hookConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, hc *domain.HookContext) (*domain.HookContext, error) {
		if hc.Method != domain.MethodUpdate && hc.Method != domain.MethodPatch {
			return hc, nil
		}
		if hc.ID == "" {
			return nil, domain.ErrInvalidRequest(fmt.Sprintf("%s requires a vaccine proof id", hc.Method)).
				WithCode(domain.ErrorCodeMissingID).
				WithParam("id")
		}

		status, err := checker.Status(ctx, hc.ID)
		if err != nil {
			return nil, err
		}
		if status != nil && status.Revoked {
			return nil, domain.ErrProofRevoked(hc.ID, status.Reason)
		}

		if revokes(hc.Data) {
			hc.Data["revoked_at"] = cfg.now().UTC()
			if reason, _ := hc.Data["revocation_reason"].(string); reason == "" {
				hc.Data["revocation_reason"] = DefaultReason
			}
		}

		return hc, nil
	}
}

// revokes reports whether a payload moves the proof to revoked.
func revokes(data map[string]any) bool {
	if data == nil {
		return false
	}
	switch v := data["status"].(type) {
	case string:
		return v == string(domain.ProofRevoked)
	case domain.ProofStatus:
		return v == domain.ProofRevoked
	default:
		return false
	}
}
