package revocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/pkg/safehttp"
)

// OnError selects what a webhook checker does when the service cannot answer.
type OnError string

const (
	// OnErrorDeny fails closed: the write is rejected.
	OnErrorDeny OnError = "deny"
	// OnErrorAllow fails open: the proof is treated as not revoked.
	OnErrorAllow OnError = "allow"
)

// WebhookChecker asks an external revocation service for a proof's status.
type WebhookChecker struct {
	url     string
	onError OnError
	retries int
	headers map[string]string
	client  *http.Client
	logger  *slog.Logger
}

// WebhookConfig configures a webhook checker.
type WebhookConfig struct {
	URL          string
	Timeout      time.Duration
	OnError      OnError // "allow" or "deny" (default: deny)
	Retries      int
	AllowPrivate bool
	Headers      map[string]string
	Logger       *slog.Logger
	// Client overrides the HTTP client built from Timeout and AllowPrivate.
	Client *http.Client
}

type webhookRequest struct {
	ID string `json:"id"`
}

type webhookResponse struct {
	Revoked   bool       `json:"revoked"`
	Reason    string     `json:"reason,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// NewWebhookChecker creates a new webhook checker.
func NewWebhookChecker(cfg WebhookConfig) *WebhookChecker {
	onError := cfg.OnError
	if onError == "" {
		onError = OnErrorDeny // Default to fail-closed
	}

	client := cfg.Client
	if client == nil {
		client = safehttp.NewClient(cfg.Timeout, cfg.AllowPrivate)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookChecker{
		url:     cfg.URL,
		onError: onError,
		retries: cfg.Retries,
		headers: cfg.Headers,
		client:  client,
		logger:  logger,
	}
}

// Status calls the webhook, retrying failed attempts.
func (c *WebhookChecker) Status(ctx context.Context, id string) (*domain.RevocationStatus, error) {
	var lastErr error

	attempts := c.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		status, err := c.doRequest(ctx, id)
		if err == nil {
			return status, nil
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return c.handleError(id, lastErr)
}

func (c *WebhookChecker) doRequest(ctx context.Context, id string) (*domain.RevocationStatus, error) {
	body, err := json.Marshal(webhookRequest{ID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal revocation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Add custom headers
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("revocation webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("revocation webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out webhookResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal revocation response: %w", err)
	}

	return &domain.RevocationStatus{
		ID:        id,
		Revoked:   out.Revoked,
		Reason:    out.Reason,
		RevokedAt: out.RevokedAt,
	}, nil
}

func (c *WebhookChecker) handleError(id string, err error) (*domain.RevocationStatus, error) {
	switch c.onError {
	case OnErrorAllow:
		c.logger.Warn("revocation webhook failed, allowing",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return &domain.RevocationStatus{ID: id}, nil
	case OnErrorDeny:
		// The upstream error may carry the webhook's response body; it stays
		// in the log.
		c.logger.Warn("revocation webhook failed, denying",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrForbidden(fmt.Sprintf("revocation status of vaccine proof %s is unavailable", id)).
			WithCode(domain.ErrorCodeRevocationUnknown)
	default:
		// Unknown onError, fail-closed for safety
		return nil, fmt.Errorf("revocation webhook %s failed: %w", c.url, err)
	}
}

var _ ports.RevocationChecker = (*WebhookChecker)(nil)
