package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCanFetchDisallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	checker := NewRobotsChecker("test-agent", 2*time.Second)

	allowed, err := checker.CanFetch(context.Background(), srv.URL+"/private/page")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("expected /private/ to be disallowed")
	}

	allowed, err = checker.CanFetch(context.Background(), srv.URL+"/public/page")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected /public/ to be allowed")
	}
}

func TestCanFetchMissingRobots(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	checker := NewRobotsChecker("test-agent", 2*time.Second)
	allowed, err := checker.CanFetch(context.Background(), srv.URL+"/anything")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("missing robots.txt should allow fetching")
	}
}

func TestCanFetchCachesPerHost(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		}
	}))
	defer srv.Close()

	checker := NewRobotsChecker("test-agent", 2*time.Second)
	for i := 0; i < 3; i++ {
		if _, err := checker.CanFetch(context.Background(), srv.URL+"/page"); err != nil {
			t.Fatalf("CanFetch: %v", err)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}
