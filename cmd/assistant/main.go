package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"assistant/internal/chunker"
	"assistant/internal/config"
	"assistant/internal/domain"
	"assistant/internal/embedding"
	"assistant/internal/index"
	"assistant/internal/llm"
	"assistant/internal/pdfdoc"
	"assistant/internal/pipeline"
	"assistant/internal/router"
	"assistant/internal/tui"
	"assistant/internal/vectorstore"
	"assistant/internal/vectorstore/memory"
	"assistant/internal/vectorstore/qdrant"
	"assistant/internal/weather"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/assistant/config.yaml if not provided)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	emb, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	model, err := llm.NewClient(llm.Config{
		BaseURL:   cfg.ChatModel.BaseURL,
		APIKeyEnv: cfg.ChatModel.APIKeyEnv,
		Model:     cfg.ChatModel.Model,
		Timeout:   time.Duration(cfg.ChatModel.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("chat model init failed: %v", err)
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     os.Getenv(cfg.VectorStore.Qdrant.APIKeyEnv),
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	weatherKey := os.Getenv(cfg.Weather.APIKeyEnv)
	var resolver domain.CityResolver
	switch cfg.Weather.Resolver {
	case "static":
		resolver = weather.NewStaticResolver(cfg.Weather.DefaultCity)
	case "geocode", "":
		resolver = weather.NewGeocodeResolver(weather.GeocodeConfig{
			APIKey:      weatherKey,
			DefaultCity: cfg.Weather.DefaultCity,
			CountryHint: cfg.Weather.CountryHint,
			Timeout:     time.Duration(cfg.Weather.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown city resolver: %s", cfg.Weather.Resolver)
	}

	var cache domain.WeatherCache
	ttl := time.Duration(cfg.Weather.Cache.TTLSecs) * time.Second
	switch cfg.Weather.Cache.Type {
	case "none":
		cache = weather.NopCache{}
	case "memory", "":
		cache = weather.NewMemoryCache(ttl)
	case "redis":
		cache = weather.NewRedisCache(cfg.Weather.Cache.RedisAddr, ttl)
	default:
		log.Fatalf("unknown weather cache: %s", cfg.Weather.Cache.Type)
	}

	fetcher := weather.NewFetcher(weather.FetcherConfig{
		APIKey:  weatherKey,
		Timeout: time.Duration(cfg.Weather.TimeoutSecs) * time.Second,
	}, resolver, cache, logger)

	// Index the document before the first turn
	if err := pdfdoc.EnsureSample(cfg.DocumentPath); err != nil {
		log.Fatalf("sample document synthesis failed: %v", err)
	}
	doc, err := pdfdoc.Extract(cfg.DocumentPath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", cfg.DocumentPath, err)
	}

	ch := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	builder := index.NewBuilder(ch, emb, st, logger)
	ctx := context.Background()
	stats, err := builder.Build(ctx, doc)
	if err != nil {
		log.Fatalf("index build failed: %v", err)
	}
	header := fmt.Sprintf("Indexed %s (%d segments)", cfg.DocumentPath, stats.Segments)
	if stats.Reused {
		header += " [reused]"
	}

	retriever := index.NewRetriever(emb, st)
	controller := pipeline.NewController(router.New(model), fetcher, retriever, model, cfg.Retrieval.TopK, logger)

	m := tui.New(controller, header)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
