package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{"same version", "1.4.2", "1.4.2", false},
		{"patch upgrade", "1.4.3", "1.4.2", true},
		{"minor downgrade", "1.3.9", "1.4.0", false},
		{"major upgrade", "2.0.0", "1.9.9", true},
		{"multi-digit patch", "0.0.100", "0.0.99", true},
		{"different lengths", "1.1", "1.0.7", true},
		{"pre-release same base", "1.4.2-rc1", "1.4.2", false},
		{"build metadata", "1.4.3+sha.abc", "1.4.2", true},
		{"dev build behind release", "0.2.0", "0.1.0-dev", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNewer(tt.latest, tt.current); got != tt.want {
				t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
			}
		})
	}
}

func TestChecker(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"tag_name":"v0.3.0","html_url":"https://example.com/releases/v0.3.0"}`))
	}))
	defer srv.Close()

	c := &Checker{URL: srv.URL, Client: srv.Client()}

	update, err := c.Check(context.Background(), "v0.2.1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !update.Available || update.Latest != "0.3.0" {
		t.Errorf("update = %+v, want 0.3.0 available", update)
	}
	if update.URL != "https://example.com/releases/v0.3.0" {
		t.Errorf("URL = %q", update.URL)
	}
	if userAgent != "fxdash/v0.2.1" {
		t.Errorf("User-Agent = %q", userAgent)
	}

	update, err = c.Check(context.Background(), "0.3.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if update.Available {
		t.Error("same version reported as update")
	}
}

func TestCheckerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Checker{URL: srv.URL, Client: srv.Client()}
	if _, err := c.Check(context.Background(), "0.1.0"); err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want status 403", err)
	}
}

func TestBanner(t *testing.T) {
	if strings.TrimSpace(Banner()) == "" {
		t.Error("banner is empty")
	}
}
