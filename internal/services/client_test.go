package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/favsync/internal/shared"
)

func TestStatusError(t *testing.T) {
	tc := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tc {
		err := &StatusError{Service: "test", StatusCode: tt.status}
		if got := err.Retryable(); got != tt.retryable {
			t.Errorf("Retryable(%d) = %v, want %v", tt.status, got, tt.retryable)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected status %d to match ErrAPIRequest", tt.status)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want bool
	}{
		{name: "service unavailable", err: &StatusError{StatusCode: 503}, want: true},
		{name: "bad request", err: &StatusError{StatusCode: 400}, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransport(t *testing.T) {
	get := func(url string) requestFunc {
		return func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		}
	}

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		tr := newTransport("test", testHTTPConfig())
		var result struct {
			OK bool `json:"ok"`
		}
		if err := tr.do(context.Background(), get(server.URL), &result); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.OK {
			t.Error("expected decoded body")
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("gives up after configured attempts", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		err := newTransport("test", testHTTPConfig()).do(context.Background(), get(server.URL), nil)
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 StatusError, got %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "bad video id"}`))
		}))
		defer server.Close()

		err := newTransport("test", testHTTPConfig()).do(context.Background(), get(server.URL), nil)
		status, detail := statusOf(err)
		if status != http.StatusBadRequest || detail != "bad video id" {
			t.Errorf("unexpected status/detail: %d %q", status, detail)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := testHTTPConfig()
		cfg.RetryAttempts = 100
		cfg.RetryBaseDelay = shared.Duration{Duration: 50 * time.Millisecond}
		cfg.RetryMaxDelay = shared.Duration{Duration: 50 * time.Millisecond}

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
		defer cancel()

		start := time.Now()
		if err := newTransport("test", cfg).do(ctx, get(server.URL), nil); err == nil {
			t.Fatal("expected error")
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("retry loop ignored cancellation, ran %v", elapsed)
		}
	})
}

func TestRetryPolicy(t *testing.T) {
	cfg := shared.DefaultConfig().HTTP
	p := NewRetryPolicy(cfg)

	if p.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", p.Attempts)
	}
	if p.BaseDelay != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 500ms", p.BaseDelay)
	}
	if p.MaxDelay != 8*time.Second {
		t.Errorf("MaxDelay = %v, want 8s", p.MaxDelay)
	}

	b := p.backoff()
	for i := range 3 {
		d, stop := b.Next()
		if stop {
			t.Fatalf("backoff stopped early at retry %d", i+1)
		}
		if d <= 0 || d > p.MaxDelay {
			t.Errorf("retry %d delay %v out of range", i+1, d)
		}
	}
	if _, stop := b.Next(); !stop {
		t.Error("expected backoff to stop after Attempts-1 retries")
	}
}
