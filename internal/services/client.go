package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAttempts  = 4
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 8 * time.Second
	defaultRPS            = 5.0
)

// RetryPolicy bounds retries of transient failures with capped exponential backoff.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// NewRetryPolicy builds a [RetryPolicy] from the [shared.HTTPConfig] section.
func NewRetryPolicy(cfg shared.HTTPConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:  cfg.RetryAttempts,
		BaseDelay: cfg.RetryBaseDelay.Duration,
		MaxDelay:  cfg.RetryMaxDelay.Duration,
	}
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = defaultRetryBaseDelay
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// isTransient classifies errors worth another attempt: retryable statuses and network timeouts.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// transport performs rate limited JSON requests with retries on behalf of a service client.
type transport struct {
	service string
	client  *http.Client
	limiter *rate.Limiter
	policy  RetryPolicy
	logger  *log.Logger
}

func newTransport(service string, cfg shared.HTTPConfig) *transport {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	policy := NewRetryPolicy(cfg)
	if policy.Attempts <= 0 {
		policy.Attempts = defaultRetryAttempts
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaultRetryMaxDelay
	}

	return &transport{
		service: service,
		client:  &http.Client{Timeout: cfg.Timeout.Duration},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		policy:  policy,
		logger:  shared.NewLogger(io.Discard),
	}
}

// requestFunc builds a fresh request for each attempt so bodies can be replayed.
type requestFunc func(ctx context.Context) (*http.Request, error)

// do executes the request built by build and decodes a JSON body into result when non-nil.
func (t *transport) do(ctx context.Context, build requestFunc, result any) error {
	attempt := 0
	return retry.Do(ctx, t.policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := t.once(ctx, build, result)
		if err != nil && isTransient(err) {
			t.logger.Debug("retrying request", "service", t.service, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (t *transport) once(ctx context.Context, build requestFunc, result any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := build(ctx)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Service: t.service, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// readDetail extracts an error message from a JSON error body, accepting
// {"detail": "..."} and {"error": {"message": "..."}} shapes.
func readDetail(body io.Reader) string {
	var errResp struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&errResp); err != nil {
		return ""
	}
	if errResp.Detail != "" {
		return errResp.Detail
	}
	return errResp.Error.Message
}
