package safehttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckIP(t *testing.T) {
	tests := []struct {
		host    string
		wantErr bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"10.1.2.3", true},
		{"192.168.0.10", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"not-an-ip", true},
		{"8.8.8.8", false},
		{"2606:4700:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			err := CheckIP(tt.host)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckIP(%q) error = %v, wantErr %v", tt.host, err, tt.wantErr)
			}
		})
	}
}

func TestNewClient_RejectsLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	if _, err := NewClient(time.Second, false).Do(req); err == nil {
		t.Error("safe client reached a loopback server")
	}

	resp, err := NewClient(time.Second, true).Do(req)
	if err != nil {
		t.Fatalf("private client failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
