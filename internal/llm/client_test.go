package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/domain"
	"assistant/internal/fault"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "TEST_OPENAI_KEY", Model: "test-model"})
	require.NoError(t, err)
	return c
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"  hello there  "}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Complete(context.Background(), []domain.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestCompleteAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []domain.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrAuth)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []domain.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrMalformed)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.Error(t, err)
}
