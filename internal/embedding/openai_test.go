package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/fault"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "TEST_OPENAI_KEY"})
	require.NoError(t, err)
	return c
}

func TestEmbedLearnsDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"embedding":[0.1,0.2,0.3,0.4]}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	assert.Zero(t, c.Dimension())

	vec, err := c.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, 4, c.Dimension())
}

func TestEmbedEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Embed(context.Background(), "some text")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrMalformed)
}

func TestEmbedRateLimitRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"embedding":[1,2]}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	vec, err := c.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vec, 2)
	assert.Equal(t, 2, calls)
}
