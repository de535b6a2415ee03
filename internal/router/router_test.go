package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/domain"
	"assistant/internal/fault"
)

type stubModel struct {
	reply string
	err   error
}

func (s stubModel) Complete(context.Context, []domain.Message) (string, error) {
	return s.reply, s.err
}

func TestRouteLabels(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.Route
	}{
		{"plain weather", "weather", domain.RouteWeather},
		{"weather with punctuation", "Weather.", domain.RouteWeather},
		{"weather in a sentence", "The label is weather", domain.RouteWeather},
		{"plain document", "document", domain.RouteDocument},
		{"legacy pdf label", "pdf", domain.RouteDocument},
		{"document uppercase", "DOCUMENT", domain.RouteDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(stubModel{reply: tt.reply})
			got, err := r.Route(context.Background(), "any question")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteMalformedReply(t *testing.T) {
	for _, reply := range []string{"", "banana", "weather or document", "I cannot classify this"} {
		r := New(stubModel{reply: reply})
		_, err := r.Route(context.Background(), "any question")
		require.Error(t, err, "reply %q", reply)
		assert.ErrorIs(t, err, fault.ErrMalformed)
	}
}

func TestRouteModelErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	r := New(stubModel{err: boom})
	_, err := r.Route(context.Background(), "any question")
	assert.ErrorIs(t, err, boom)
}
