package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryPolicy is exponential backoff: BaseDelay, 2*BaseDelay, 4*BaseDelay ...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is three attempts starting at one second
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Delay returns the wait after the given failed attempt (1-based)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type failureClass int

const (
	failureRetryable failureClass = iota
	failureUnauthorized
	failureBadRequest
	failureCanceled
)

// classifyFailure decides whether an attempt error is worth another attempt
func classifyFailure(ctx context.Context, err error) failureClass {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return failureCanceled
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return failureUnauthorized
		case http.StatusBadRequest:
			return failureBadRequest
		}
	}
	// other statuses, network errors, client timeouts, empty or malformed bodies
	return failureRetryable
}
