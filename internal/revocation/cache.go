package revocation

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// CachedChecker remembers revoked statuses returned by another checker.
// Revocation is terminal, so only revoked answers are cached. Concurrent
// misses for the same id share one call to the wrapped checker.
type CachedChecker struct {
	next     ports.RevocationChecker
	cache    *expirable.LRU[string, *domain.RevocationStatus]
	inflight singleflight.Group
}

// NewCachedChecker wraps next with an LRU of size entries that expire after ttl.
// A ttl of zero keeps entries until evicted.
func NewCachedChecker(next ports.RevocationChecker, size int, ttl time.Duration) *CachedChecker {
	return &CachedChecker{
		next:  next,
		cache: expirable.NewLRU[string, *domain.RevocationStatus](size, nil, ttl),
	}
}

// Status returns a cached revoked status or asks the wrapped checker.
func (c *CachedChecker) Status(ctx context.Context, id string) (*domain.RevocationStatus, error) {
	if status, ok := c.cache.Get(id); ok {
		return status, nil
	}

	// The shared lookup outlives any single caller; each caller still stops
	// waiting when its own context ends.
	lookupCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(id, func() (any, error) {
		status, err := c.next.Status(lookupCtx, id)
		if err != nil {
			return nil, err
		}
		if status != nil && status.Revoked {
			c.cache.Add(id, status)
		}
		return status, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		status, _ := res.Val.(*domain.RevocationStatus)
		return status, nil
	}
}

// Len returns the number of cached statuses.
func (c *CachedChecker) Len() int {
	return c.cache.Len()
}

var _ ports.RevocationChecker = (*CachedChecker)(nil)
