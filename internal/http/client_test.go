package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "chmirad-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte("HDF5 payload"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.UserAgent = "chmirad-test"
	client := NewClient(opts)

	status, body, err := client.Fetch(context.Background(), server.URL+"/maxz/hdf5/file.hdf")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != "HDF5 payload" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_NotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	status, body, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if body != nil {
		t.Errorf("expected nil body for 404, got %q", body)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	opts := DefaultOptions()
	opts.Timeout = 50 * time.Millisecond
	client := NewClient(opts)

	if _, _, err := client.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(DefaultOptions())
	if _, _, err := client.Fetch(context.Background(), url); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(DefaultOptions())
	if _, _, err := client.Fetch(ctx, server.URL); err == nil {
		t.Error("expected error for cancelled context")
	}
	if hits.Load() != 0 {
		t.Errorf("server was hit %d times", hits.Load())
	}
}

func TestFetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.RequestsPerSecond = 20
	opts.Burst = 1
	client := NewClient(opts)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, _, err := client.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}
	// Two waits of 50ms each after the initial burst token.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 requests at 20 rps took %v, expected at least ~100ms", elapsed)
	}
}
