// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: bounded
// retries for transient failures and a throttle for provider rate limits.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Policy bounds how DoWithRetry retries transient failures.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int

	// Delay is the wait before the second attempt.
	Delay time.Duration

	// Exponential doubles Delay after every retry. When false the delay
	// is fixed.
	Exponential bool

	// OnRetry, when set, is called before each wait with the 1-based
	// attempt that just failed and its error.
	OnRetry func(attempt int, err error)
}

// ExhaustedError reports that every attempt failed transiently.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// StatusError is a transient HTTP status observed on an attempt.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
}

// IsTransientStatus reports whether an HTTP status is worth retrying:
// 429 Too Many Requests and any 5xx.
func IsTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// DoWithRetry executes an HTTP request and retries transport errors and
// transient statuses (429, 5xx). Any other response, successful or not, is
// returned to the caller on the attempt it arrives.
//
// On each transient status the response body is drained and closed before
// waiting. If ctx is cancelled the function returns ctx.Err() without
// further attempts. When all attempts fail the error is an *ExhaustedError
// wrapping the last failure.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
		case IsTransientStatus(resp.StatusCode):
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode}
		default:
			return resp, nil
		}

		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
		if p.Exponential {
			delay *= 2
		}
	}
	return nil, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// IsExhausted reports whether err came from running out of attempts.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
