package weather

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

const onecallBody = `{"current":{"temp":15.2,"feels_like":14.1,"humidity":61,"wind_speed":5.14,` +
	`"weather":[{"description":"scattered clouds"}]}}`

func newOneCallServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		require.Equal(t, "/data/3.0/onecall", r.URL.Path)
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		fmt.Fprint(w, onecallBody)
	}))
}

func TestFetchSummarizesCurrentConditions(t *testing.T) {
	srv := newOneCallServer(t, nil)
	defer srv.Close()

	f := NewFetcher(FetcherConfig{BaseURL: srv.URL, APIKey: "k"}, NewStaticResolver("Hyderabad"), NopCache{}, nil)
	report, err := f.Fetch(context.Background(), "What is the weather in Paris?")
	require.NoError(t, err)

	assert.Equal(t, "Paris", report.City)
	assert.Equal(t, "Scattered clouds", report.Conditions)
	assert.InDelta(t, 15.2, report.Temperature, 0.001)
	assert.Equal(t, 61, report.Humidity)
	assert.Contains(t, report.Summary, "Paris")
	assert.Contains(t, report.Summary, "15.2")
	assert.Contains(t, report.Summary, "humidity 61%")
	assert.Contains(t, report.Summary, "Scattered clouds")
}

func TestFetchCityNotFoundIsTerminal(t *testing.T) {
	hits := 0
	srv := newOneCallServer(t, &hits)
	defer srv.Close()

	f := NewFetcher(FetcherConfig{BaseURL: srv.URL, APIKey: "k"}, NewStaticResolver("Hyderabad"), NopCache{}, nil)
	_, err := f.Fetch(context.Background(), "What's the weather on Mars?")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrCityNotFound)
	assert.Zero(t, hits, "unresolvable city must not reach the weather API")
}

func TestFetchUsesCache(t *testing.T) {
	hits := 0
	srv := newOneCallServer(t, &hits)
	defer srv.Close()

	cache := NewMemoryCache(0)
	f := NewFetcher(FetcherConfig{BaseURL: srv.URL, APIKey: "k"}, NewStaticResolver("Hyderabad"), cache, nil)

	_, err := f.Fetch(context.Background(), "weather in Paris?")
	require.NoError(t, err)
	report, err := f.Fetch(context.Background(), "weather in Paris?")
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second fetch must be served from cache")
	assert.Equal(t, "Paris", report.City)
}

func TestFetchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{BaseURL: srv.URL, APIKey: "bad"}, NewStaticResolver("Hyderabad"), NopCache{}, nil)
	_, err := f.Fetch(context.Background(), "weather in Paris?")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrAuth)
}

func TestFetchMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current":{}}`)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{BaseURL: srv.URL, APIKey: "k"}, NewStaticResolver("Hyderabad"), NopCache{}, nil)
	_, err := f.Fetch(context.Background(), "weather in Paris?")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrMalformed)
}
