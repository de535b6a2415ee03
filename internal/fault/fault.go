// Package fault defines the error taxonomy shared by every outbound client
// and the retry policy applied to transient failures.
package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrAuth indicates the provider rejected our credentials.
	ErrAuth = errors.New("provider auth error")
	// ErrRateLimit indicates the provider throttled the request.
	ErrRateLimit = errors.New("provider rate limit")
	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("provider network error")
	// ErrMalformed indicates the provider replied outside its contract.
	ErrMalformed = errors.New("malformed provider response")
	// ErrCityNotFound is terminal: the question names no resolvable city.
	ErrCityNotFound = errors.New("city not found")
)

// FromStatus maps an HTTP status code to a fault for the given provider.
// 2xx codes map to nil.
func FromStatus(provider string, status int) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w: status %d", provider, ErrAuth, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: status %d", provider, ErrRateLimit, status)
	case status >= 500:
		return fmt.Errorf("%s: %w: status %d", provider, ErrNetwork, status)
	default:
		return fmt.Errorf("%s: %w: status %d", provider, ErrMalformed, status)
	}
}

// Retryable reports whether an operation that failed with err may be retried.
// Only transient network and rate-limit faults qualify; auth failures,
// malformed responses and unresolvable cities are terminal.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimit)
}

// Retry runs op with bounded exponential backoff, retrying transient faults
// only. Terminal faults abort immediately, as does context cancellation.
func Retry(ctx context.Context, maxAttempts uint64, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	wrapped := func() error {
		err := op()
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts), ctx))
}
