package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStealthFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if _, err := w.Write([]byte("<html>hello</html>")); err != nil {
				t.Error(err)
			}
		}))
		defer srv.Close()

		f := NewStealthFetcher(5 * time.Second)
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != "<html>hello</html>" {
			t.Errorf("Fetch() body = %q", body)
		}
	})

	t.Run("non-HTML content yields empty body without error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			if _, err := w.Write([]byte("%PDF-1.4")); err != nil {
				t.Error(err)
			}
		}))
		defer srv.Close()

		f := NewStealthFetcher(5 * time.Second)
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != "" {
			t.Errorf("expected empty body for non-HTML content, got %q", body)
		}
	})

	t.Run("sends a User-Agent from the pool", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()

		agents := []string{"agent-a", "agent-b"}
		f := NewStealthFetcher(5*time.Second, WithUserAgents(agents))
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}

		if gotUA != "agent-a" && gotUA != "agent-b" {
			t.Errorf("User-Agent %q not from the configured pool", gotUA)
		}
	})

	t.Run("truncates oversized bodies", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			if _, err := w.Write([]byte(strings.Repeat("x", 1024))); err != nil {
				t.Error(err)
			}
		}))
		defer srv.Close()

		f := NewStealthFetcher(5*time.Second, WithMaxBodySize(100))
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(body) != 100 {
			t.Errorf("body length = %d, want 100", len(body))
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := NewStealthFetcher(5 * time.Second)
		if _, err := f.Fetch(ctx, srv.URL); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
