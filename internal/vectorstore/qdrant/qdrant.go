// Package qdrant is a minimal REST client to a Qdrant vector database.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"assistant/internal/domain"
	"assistant/internal/fault"
)

// namespace for deriving stable point IDs from segment IDs, so that
// re-upserting the same segment overwrites instead of duplicating.
var pointNamespace = uuid.MustParse("6f1f64f5-87c8-4dc8-9c2e-2f57e0a63c5d")

// Storage stores vectors in a named Qdrant collection using cosine distance.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if it does not exist. An existing collection
// is reused unchanged.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil)
}

func (s *Storage) Upsert(ctx context.Context, segments []domain.Segment, vectors [][]float64) error {
	if len(segments) != len(vectors) {
		return errors.New("segments and vectors length mismatch")
	}
	points := make([]map[string]any, len(segments))
	for i := range segments {
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(pointNamespace, []byte(segments[i].SegmentID)).String(),
			"vector": vectors[i],
			"payload": map[string]any{
				"document_id": segments[i].DocumentID,
				"segment_id":  segments[i].SegmentID,
				"index":       segments[i].Index,
				"text":        segments[i].Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil)
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		seg := domain.Segment{}
		if v, ok := r.Payload["document_id"].(string); ok {
			seg.DocumentID = v
		}
		if v, ok := r.Payload["segment_id"].(string); ok {
			seg.SegmentID = v
		}
		if v, ok := r.Payload["index"].(float64); ok {
			seg.Index = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			seg.Text = v
		}
		results = append(results, domain.SearchResult{Segment: seg, Score: r.Score})
	}
	return results, nil
}

// Count returns the exact number of points in the collection. A missing
// collection counts as empty.
func (s *Storage) Count(ctx context.Context) (int, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	body := map[string]any{"exact": true}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), body, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Clear drops the collection.
func (s *Storage) Clear(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil)
}

func (s *Storage) collectionExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("qdrant: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := fault.FromStatus("qdrant", resp.StatusCode); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := fault.FromStatus("qdrant", resp.StatusCode); err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: %w: %v", fault.ErrMalformed, err)
		}
	}
	return nil
}

func (s *Storage) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
