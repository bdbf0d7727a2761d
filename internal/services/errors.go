package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/favsync/internal/shared"
)

// FetchError reports a failed catalog read. It matches [shared.ErrFetch].
type FetchError struct {
	Service string
	Op      string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == shared.ErrFetch }

// MutationError reports that the destination rejected a favorite. It matches [shared.ErrMutation].
type MutationError struct {
	ID         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *MutationError) Error() string {
	msg := fmt.Sprintf("add favorite %s", e.ID)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MutationError) Unwrap() error { return e.Err }

func (e *MutationError) Is(target error) bool { return target == shared.ErrMutation }

// StatusError is a non-2xx response from a service API.
type StatusError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s API error: status %d", e.Service, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

// Retryable reports whether the response signals a transient condition.
func (e *StatusError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	}
	return false
}

// Unauthorized reports whether the service rejected the credentials.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// statusOf extracts the HTTP status and detail from err, if any.
func statusOf(err error) (int, string) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, se.Detail
	}
	return 0, ""
}
