package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/pkg/config"
	"github.com/tjfontaine/vaccine-proof-api/internal/services/vaccineproof"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/memory"
)

// staticConfig is a ConfigProvider that serves a fixed config and lets the
// test trigger reloads.
type staticConfig struct {
	cfg      *config.Config
	closeErr error

	mu       sync.Mutex
	onChange func(*config.Config)
}

func (s *staticConfig) Load(ctx context.Context) (*config.Config, error) {
	return s.cfg, nil
}

func (s *staticConfig) Watch(ctx context.Context, onChange func(*config.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = onChange
	return nil
}

func (s *staticConfig) Close() error {
	return s.closeErr
}

func (s *staticConfig) reload(cfg *config.Config) bool {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(cfg)
	return true
}

// failingStore fails on Close.
type failingStore struct {
	*memory.Store
}

func (failingStore) Close() error { return errors.New("disk on fire") }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Port: 0, RequestTimeout: "5s"},
		Storage:    config.StorageConfig{Type: "memory"},
		Revocation: config.RevocationConfig{Source: "store"},
		Log:        config.LogConfig{Level: "info"},
	}
}

func post(t *testing.T, h http.Handler, method, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func proofPayload() map[string]any {
	return map[string]any{
		"holder_name":  "Ada Lovelace",
		"vaccine_code": "J07BX03",
		"dose_number":  1,
		"issuer":       "nhs",
	}
}

func TestApp_New_RequiredOptions(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("Expected error without config provider")
	}
	if err.Error() != "config provider required (use WithFileConfig or WithConfigProvider)" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestApp_Start_And_Shutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
server:
  port: 0
storage:
  type: sqlite
  sqlite:
    path: ` + filepath.Join(tmpDir, "data", "proofs.db") + `
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	var errBuf bytes.Buffer
	app, err := New(
		WithLogger(quietLogger()),
		WithFileConfig(configPath),
		WithErrorLogger(slog.New(slog.NewJSONHandler(&errBuf, nil))),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, ok := app.Registry().Service(vaccineproof.Path); !ok {
		t.Error("Expected vaccine-proof service to be registered")
	}

	h := app.Handler()
	rec := post(t, h, http.MethodPost, "/"+vaccineproof.Path, proofPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.VaccineProof
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = post(t, h, http.MethodPatch, "/"+vaccineproof.Path+"/"+created.ID, map[string]any{"status": "revoked"})
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = post(t, h, http.MethodPut, "/"+vaccineproof.Path+"/"+created.ID, proofPayload())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("update revoked status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(errBuf.String(), "error in vaccine-proof calling update method") {
		t.Errorf("expected error log line, got %q", errBuf.String())
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestApp_WebhookRevocationWithCache(t *testing.T) {
	var calls atomic.Int32
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"revoked":true,"reason":"registry says so"}`))
	}))
	defer webhook.Close()

	cfg := baseConfig()
	cfg.Revocation = config.RevocationConfig{
		Source: "webhook",
		Webhook: config.RevocationWebhookConfig{
			URL:          webhook.URL,
			Timeout:      "1s",
			OnError:      "deny",
			AllowPrivate: true,
		},
		Cache: config.RevocationCacheConfig{Size: 8, TTL: "1m"},
	}

	app, err := New(
		WithLogger(quietLogger()),
		WithConfigProvider(&staticConfig{cfg: cfg}),
		WithErrorLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	h := app.Handler()
	for i := 0; i < 3; i++ {
		rec := post(t, h, http.MethodPatch, "/"+vaccineproof.Path+"/p-1", map[string]any{"dose_number": 2})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("webhook called %d times, want 1 (cached)", calls.Load())
	}
}

func TestApp_LogLevelReload(t *testing.T) {
	provider := &staticConfig{cfg: baseConfig()}
	level := new(slog.LevelVar)
	level.Set(slog.LevelError)

	app, err := New(
		WithLogger(quietLogger()),
		WithConfigProvider(provider),
		WithMemoryStorage(),
		WithLevelVar(level),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	if level.Level() != slog.LevelInfo {
		t.Errorf("level after start = %v, want info", level.Level())
	}

	debug := baseConfig()
	debug.Log.Level = "debug"
	// watchConfig registers asynchronously.
	for i := 0; i < 1000 && !provider.reload(debug); i++ {
		time.Sleep(time.Millisecond)
	}
	if level.Level() != slog.LevelDebug {
		t.Errorf("level after reload = %v, want debug", level.Level())
	}
}

func TestApp_ShutdownAggregatesErrors(t *testing.T) {
	provider := &staticConfig{cfg: baseConfig(), closeErr: errors.New("watcher stuck")}

	app, err := New(
		WithLogger(quietLogger()),
		WithConfigProvider(provider),
		WithProofStore(failingStore{memory.New()}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	err = app.Shutdown(context.Background())
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected multierror, got %v", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(merr.Errors), err)
	}
}

func TestApp_UnknownStorage(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage.Type = "tape"

	app, err := New(WithLogger(quietLogger()), WithConfigProvider(&staticConfig{cfg: cfg}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Start(context.Background()); err == nil {
		t.Error("Expected error for unknown storage type")
	}
}
