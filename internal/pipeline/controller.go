// Package pipeline wires the router, weather fetcher, retriever and answer
// composition into one request/response flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"assistant/internal/domain"
	"assistant/internal/fault"
	"assistant/internal/index"
	"assistant/internal/router"
	"assistant/internal/weather"
)

// WeatherFetcher is the pipeline-facing subset of the weather package.
type WeatherFetcher interface {
	Fetch(ctx context.Context, question string) (domain.WeatherReport, error)
}

// Retriever is the pipeline-facing subset of the index package.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// QueryRouter classifies a question into a route.
type QueryRouter interface {
	Route(ctx context.Context, question string) (domain.Route, error)
}

var (
	_ WeatherFetcher = (*weather.Fetcher)(nil)
	_ Retriever      = (*index.Retriever)(nil)
	_ QueryRouter    = (*router.Router)(nil)
)

// Controller answers one question per call: route, gather context along the
// chosen path, then compose the final answer. Stateless across calls.
type Controller struct {
	router    QueryRouter
	fetcher   WeatherFetcher
	retriever Retriever
	model     domain.ChatModel
	topK      int
	log       *slog.Logger
}

func NewController(r QueryRouter, f WeatherFetcher, ret Retriever, model domain.ChatModel, topK int, log *slog.Logger) *Controller {
	if topK <= 0 {
		topK = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{router: r, fetcher: f, retriever: ret, model: model, topK: topK, log: log}
}

// Answer runs one turn. Router failures fall back to the document path;
// an unresolvable city is a terminal turn error.
func (c *Controller) Answer(ctx context.Context, question string) (domain.Answer, error) {
	route, err := c.router.Route(ctx, question)
	if err != nil {
		c.log.Warn("routing failed, falling back to document path", "err", err)
		route = domain.RouteDocument
	}
	c.log.Debug("routed question", "route", route, "question", question)

	var contextText string
	switch route {
	case domain.RouteWeather:
		report, err := c.fetcher.Fetch(ctx, question)
		if err != nil {
			if errors.Is(err, fault.ErrCityNotFound) {
				return domain.Answer{}, fmt.Errorf("weather path: %w", err)
			}
			contextText = fmt.Sprintf("Sorry, I couldn't fetch the weather right now: %v", err)
		} else {
			contextText = report.Summary
		}
	default:
		results, err := c.retriever.Retrieve(ctx, question, c.topK)
		if err != nil {
			return domain.Answer{}, fmt.Errorf("document path: %w", err)
		}
		contextText = index.JoinContext(results)
	}

	text, err := c.compose(ctx, question, contextText)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("compose answer: %w", err)
	}
	return domain.Answer{Text: text, Route: route}, nil
}

func (c *Controller) compose(ctx context.Context, question, contextText string) (string, error) {
	var system string
	if strings.TrimSpace(contextText) != "" {
		system = "You are a helpful assistant. " +
			"The following context contains the exact answer to the user's question. " +
			"Use the context directly and do not reply with 'I don't know'. " +
			"Respond concisely.\n\nContext:\n" + contextText + "\n\n"
	} else {
		system = "You are a helpful assistant. Answer the question to the best of your ability."
	}
	reply, err := c.model.Complete(ctx, []domain.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
