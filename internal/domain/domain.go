package domain

import "context"

// Document represents a single source document loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Segment is a fixed-window slice of a document used for indexing.
type Segment struct {
	DocumentID string
	SegmentID  string
	Text       string
	Index      int
}

// SearchResult represents a matching segment with a relevance score.
type SearchResult struct {
	Segment Segment
	Score   float64
}

// Route is the outcome of classifying a user question.
type Route string

const (
	RouteWeather  Route = "weather"
	RouteDocument Route = "document"
)

// WeatherReport holds normalized current conditions for a city.
type WeatherReport struct {
	City        string  `json:"city"`
	Conditions  string  `json:"conditions"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Summary     string  `json:"summary"`
}

// Answer is the final response for one user turn.
type Answer struct {
	Text  string
	Route Route
}

// Message is a single chat message sent to a generative model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts free text into a numeric vector representation.
// Dimension is only known after the first successful Embed call for
// remote providers.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into segments suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Segment, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, segments []Segment, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// ChatModel sends a message list to a generative model and returns its reply.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// CityResolver turns a free-text question into city coordinates.
type CityResolver interface {
	Resolve(ctx context.Context, question string) (city string, lat, lon float64, err error)
}

// WeatherCache stores recent weather reports keyed by city.
// Implementations must treat lookup failures as misses.
type WeatherCache interface {
	Get(ctx context.Context, city string) (*WeatherReport, bool)
	Set(ctx context.Context, city string, report *WeatherReport)
}

// Assistant answers one user question per call.
type Assistant interface {
	Answer(ctx context.Context, question string) (Answer, error)
}
