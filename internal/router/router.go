// Package router classifies a user question as a weather or document query.
package router

import (
	"context"
	"fmt"
	"strings"

	"assistant/internal/domain"
	"assistant/internal/fault"
)

const systemPrompt = "You are a classifier. If the user is asking about the weather, " +
	"respond with exactly the word 'weather'. Otherwise respond with exactly the word 'document'. " +
	"Return only that one word."

// Router asks a generative model which context-gathering path to take.
type Router struct {
	model domain.ChatModel
}

func New(model domain.ChatModel) *Router {
	return &Router{model: model}
}

// Route classifies the question. A model reply that does not name exactly one
// of the two labels is a malformed-response error; callers decide the
// fallback route.
func (r *Router) Route(ctx context.Context, question string) (domain.Route, error) {
	reply, err := r.model.Complete(ctx, []domain.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: question},
	})
	if err != nil {
		return "", err
	}
	return parseLabel(reply)
}

func parseLabel(reply string) (domain.Route, error) {
	hasWeather := false
	hasDocument := false
	for _, tok := range strings.FieldsFunc(strings.ToLower(reply), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		switch tok {
		case "weather":
			hasWeather = true
		case "document", "pdf":
			hasDocument = true
		}
	}
	switch {
	case hasWeather && !hasDocument:
		return domain.RouteWeather, nil
	case hasDocument && !hasWeather:
		return domain.RouteDocument, nil
	default:
		return "", fmt.Errorf("router: %w: %q", fault.ErrMalformed, reply)
	}
}
