package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"assistant/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	segments  []domain.Segment
	ids       map[string]int
}

func NewStorage() *Storage { return &Storage{ids: make(map[string]int)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return errors.New("dimension differs from existing collection")
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, segments []domain.Segment, vectors [][]float64) error {
	if len(segments) != len(vectors) {
		return errors.New("segments and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i := range segments {
		if j, ok := s.ids[segments[i].SegmentID]; ok {
			s.segments[j] = segments[i]
			s.vectors[j] = vectors[i]
			continue
		}
		s.ids[segments[i].SegmentID] = len(s.segments)
		s.segments = append(s.segments, segments[i])
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 || len(s.vectors) == 0 {
		return []domain.SearchResult{}, nil
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = cosine(s.vectors[i], vector)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Segment: s.segments[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.segments = nil
	s.ids = make(map[string]int)
	return nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
