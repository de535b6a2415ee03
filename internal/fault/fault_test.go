package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	assert.NoError(t, FromStatus("p", http.StatusOK))
	assert.NoError(t, FromStatus("p", http.StatusCreated))
	assert.ErrorIs(t, FromStatus("p", http.StatusUnauthorized), ErrAuth)
	assert.ErrorIs(t, FromStatus("p", http.StatusForbidden), ErrAuth)
	assert.ErrorIs(t, FromStatus("p", http.StatusTooManyRequests), ErrRateLimit)
	assert.ErrorIs(t, FromStatus("p", http.StatusBadGateway), ErrNetwork)
	assert.ErrorIs(t, FromStatus("p", http.StatusBadRequest), ErrMalformed)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(fmt.Errorf("wrapped: %w", ErrNetwork)))
	assert.True(t, Retryable(ErrRateLimit))
	assert.False(t, Retryable(ErrAuth))
	assert.False(t, Retryable(ErrMalformed))
	assert.False(t, Retryable(ErrCityNotFound))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestRetryStopsOnTerminalFault(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, func() error {
		calls++
		return fmt.Errorf("auth: %w", ErrAuth)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesTransientFault(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("flaky: %w", ErrNetwork)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryBoundedAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 1, func() error {
		calls++
		return fmt.Errorf("down: %w", ErrNetwork)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 5, func() error {
		return fmt.Errorf("down: %w", ErrNetwork)
	})
	assert.Error(t, err)
}
