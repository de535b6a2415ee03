package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/fault"
)

func TestExtractCityVariants(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"What is the weather in Paris today?", "Paris"},
		{"tell me the weather in New York now", "New York"},
		{"Hyderabad weather now", "Hyderabad"},
		{"What's the weather on Mars?", "Mars"},
		{"How cold is it in Berlin", "Berlin"},
		{"What's up?", "Hyderabad"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCity(tt.question, "Hyderabad"))
		})
	}
}

func TestStaticResolverKnownCity(t *testing.T) {
	r := NewStaticResolver("Hyderabad")
	city, lat, lon, err := r.Resolve(context.Background(), "What is the weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", city)
	assert.InDelta(t, 48.8566, lat, 0.001)
	assert.InDelta(t, 2.3522, lon, 0.001)
}

func TestStaticResolverUnknownCity(t *testing.T) {
	r := NewStaticResolver("Hyderabad")
	_, _, _, err := r.Resolve(context.Background(), "What's the weather on Mars?")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrCityNotFound)
}

func TestGeocodeResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/geo/1.0/direct", r.URL.Path)
		q := r.URL.Query().Get("q")
		if q == "Paris,FR" {
			_ = json.NewEncoder(w).Encode([]map[string]float64{{"lat": 48.85, "lon": 2.35}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]float64{})
	}))
	defer srv.Close()

	r := NewGeocodeResolver(GeocodeConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		DefaultCity: "Paris",
		CountryHint: "FR",
	})

	city, lat, lon, err := r.Resolve(context.Background(), "What is the weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", city)
	assert.InDelta(t, 48.85, lat, 0.001)
	assert.InDelta(t, 2.35, lon, 0.001)

	_, _, _, err = r.Resolve(context.Background(), "What's the weather on Mars?")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrCityNotFound)
}
