package revocation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports/mocks"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/memory"
	"github.com/tjfontaine/vaccine-proof-api/internal/testutil"
)

func TestStoreChecker(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	revokedAt := fixedNow

	for _, p := range []*domain.VaccineProof{
		{ID: "active", Status: domain.ProofActive},
		{ID: "revoked", Status: domain.ProofRevoked, RevokedAt: &revokedAt, RevocationReason: "expired"},
	} {
		if err := store.CreateProof(ctx, p); err != nil {
			t.Fatalf("CreateProof: %v", err)
		}
	}

	checker := NewStoreChecker(store)

	status, err := checker.Status(ctx, "active")
	if err != nil || status.Revoked {
		t.Errorf("active: status = %+v, err = %v", status, err)
	}

	status, err = checker.Status(ctx, "revoked")
	if err != nil {
		t.Fatalf("revoked: %v", err)
	}
	if !status.Revoked || status.Reason != "expired" || status.RevokedAt == nil {
		t.Errorf("revoked: status = %+v", status)
	}

	if _, err := checker.Status(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("missing: expected not_found, got %v", err)
	}
}

func TestWebhookChecker_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		var req webhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ID != "p-9" {
			t.Errorf("id = %q, want p-9", req.ID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"revoked":true,"reason":"recalled","revoked_at":"2024-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	checker := NewWebhookChecker(WebhookConfig{
		URL:          srv.URL,
		Timeout:      time.Second,
		AllowPrivate: true,
		Headers:      map[string]string{"Authorization": "Bearer token"},
	})

	status, err := checker.Status(context.Background(), "p-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Revoked || status.Reason != "recalled" {
		t.Errorf("status = %+v", status)
	}
	if status.RevokedAt == nil || !status.RevokedAt.Equal(fixedNow) {
		t.Errorf("revoked_at = %v, want %v", status.RevokedAt, fixedNow)
	}
}

func TestWebhookChecker_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"revoked":false}`))
	}))
	defer srv.Close()

	checker := NewWebhookChecker(WebhookConfig{URL: srv.URL, Retries: 2, AllowPrivate: true})

	status, err := checker.Status(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Revoked {
		t.Error("expected not revoked")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestWebhookChecker_OnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db-primary-3 connection refused", http.StatusInternalServerError)
	}))
	defer srv.Close()

	t.Run("deny", func(t *testing.T) {
		var logs bytes.Buffer
		checker := NewWebhookChecker(WebhookConfig{
			URL:          srv.URL,
			AllowPrivate: true,
			Logger:       slog.New(slog.NewJSONHandler(&logs, nil)),
		})
		_, err := checker.Status(context.Background(), "p-1")

		apiErr, ok := domain.AsAPIError(err)
		if !ok {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Code != domain.ErrorCodeRevocationUnknown {
			t.Errorf("Code = %q, want %q", apiErr.Code, domain.ErrorCodeRevocationUnknown)
		}
		if strings.Contains(apiErr.Message, "db-primary-3") {
			t.Errorf("Message leaks webhook body: %q", apiErr.Message)
		}
		if !strings.Contains(logs.String(), "db-primary-3") {
			t.Errorf("webhook failure not logged: %s", logs.String())
		}
	})

	t.Run("allow", func(t *testing.T) {
		checker := NewWebhookChecker(WebhookConfig{URL: srv.URL, OnError: OnErrorAllow, AllowPrivate: true})
		status, err := checker.Status(context.Background(), "p-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Revoked {
			t.Error("fail-open should report not revoked")
		}
	})
}

func TestWebhookChecker_SafeTransportBlocksLoopback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"revoked":false}`))
	}))
	defer srv.Close()

	checker := NewWebhookChecker(WebhookConfig{URL: srv.URL, Timeout: time.Second})
	if _, err := checker.Status(context.Background(), "p-1"); err == nil {
		t.Error("expected loopback webhook to be refused")
	}
	if calls.Load() != 0 {
		t.Errorf("server received %d requests", calls.Load())
	}
}

func TestCachedChecker_CachesOnlyRevoked(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockRevocationChecker(ctrl)

	next.EXPECT().Status(gomock.Any(), "revoked").
		Return(&domain.RevocationStatus{ID: "revoked", Revoked: true}, nil).
		Times(1)
	next.EXPECT().Status(gomock.Any(), "active").
		Return(&domain.RevocationStatus{ID: "active"}, nil).
		Times(2)

	checker := NewCachedChecker(next, 16, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		status, err := checker.Status(ctx, "revoked")
		if err != nil || !status.Revoked {
			t.Fatalf("revoked: status = %+v, err = %v", status, err)
		}
		status, err = checker.Status(ctx, "active")
		if err != nil || status.Revoked {
			t.Fatalf("active: status = %+v, err = %v", status, err)
		}
	}

	if checker.Len() != 1 {
		t.Errorf("Len() = %d, want 1", checker.Len())
	}
}

func TestCachedChecker_DoesNotCacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockRevocationChecker(ctrl)
	boom := errors.New("down")

	gomock.InOrder(
		next.EXPECT().Status(gomock.Any(), "p-1").Return(nil, boom),
		next.EXPECT().Status(gomock.Any(), "p-1").Return(&domain.RevocationStatus{ID: "p-1", Revoked: true}, nil),
	)

	checker := NewCachedChecker(next, 4, 0)
	if _, err := checker.Status(context.Background(), "p-1"); !errors.Is(err, boom) {
		t.Fatalf("expected error, got %v", err)
	}
	status, err := checker.Status(context.Background(), "p-1")
	if err != nil || !status.Revoked {
		t.Errorf("status = %+v, err = %v", status, err)
	}
}

func TestCachedChecker_ConcurrentLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockRevocationChecker(ctrl)

	next.EXPECT().Status(gomock.Any(), "p-1").
		Return(&domain.RevocationStatus{ID: "p-1", Revoked: true, Reason: "recalled"}, nil).
		MinTimes(1)

	checker := NewCachedChecker(next, 4, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := checker.Status(context.Background(), "p-1")
			if err != nil {
				errs <- err
				return
			}
			if !status.Revoked || status.Reason != "recalled" {
				errs <- fmt.Errorf("unexpected status %+v", status)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if checker.Len() != 1 {
		t.Errorf("Len() = %d, want 1", checker.Len())
	}
}

func TestCachedChecker_CancelledCallerDoesNotFailOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockRevocationChecker(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	next.EXPECT().Status(gomock.Any(), "p-1").
		DoAndReturn(func(ctx context.Context, id string) (*domain.RevocationStatus, error) {
			once.Do(func() { close(started) })
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &domain.RevocationStatus{ID: id, Revoked: true}, nil
		}).
		MinTimes(1)

	checker := NewCachedChecker(next, 4, time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := checker.Status(firstCtx, "p-1")
		firstErr <- err
	}()
	<-started

	type result struct {
		status *domain.RevocationStatus
		err    error
	}
	second := make(chan result, 1)
	go func() {
		status, err := checker.Status(context.Background(), "p-1")
		second <- result{status, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v, want context.Canceled", err)
	}

	close(release)
	res := <-second
	if res.err != nil {
		t.Fatalf("second caller err = %v", res.err)
	}
	if !res.status.Revoked {
		t.Errorf("status = %+v, want revoked", res.status)
	}
}

func TestWebhookChecker_RecordedResponses(t *testing.T) {
	rec := testutil.NewVCRRecorder(t, "revocation_webhook")

	checker := NewWebhookChecker(WebhookConfig{
		URL:    "https://revocations.example.test/v1/status",
		Client: testutil.VCRHTTPClient(rec),
	})
	ctx := context.Background()

	status, err := checker.Status(ctx, "proof-revoked")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Revoked || status.Reason != "issuer recalled batch" {
		t.Errorf("status = %+v", status)
	}

	status, err = checker.Status(ctx, "proof-active")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Revoked {
		t.Errorf("status = %+v, want not revoked", status)
	}
}
