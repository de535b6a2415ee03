package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChatModelConfig holds configuration for the OpenAI-compatible chat model.
type ChatModelConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig holds configuration for the embeddings provider.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures fixed-window document splitting.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// WeatherCacheConfig configures caching of weather provider responses.
type WeatherCacheConfig struct {
	Type      string `yaml:"type"` // none, memory or redis
	RedisAddr string `yaml:"redis_addr"`
	TTLSecs   int    `yaml:"ttl_secs"`
}

// WeatherConfig configures the weather fetcher.
type WeatherConfig struct {
	APIKeyEnv   string             `yaml:"api_key_env"`
	Resolver    string             `yaml:"resolver"` // static or geocode
	DefaultCity string             `yaml:"default_city"`
	CountryHint string             `yaml:"country_hint"`
	TimeoutSecs int                `yaml:"timeout_secs"`
	Cache       WeatherCacheConfig `yaml:"cache"`
}

// RetrievalConfig configures query-time retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DocumentPath string            `yaml:"document_path"`
	ChatModel    ChatModelConfig   `yaml:"chat_model"`
	Embedder     EmbedderConfig    `yaml:"embedder"`
	Chunker      ChunkerConfig     `yaml:"chunker"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
	Weather      WeatherConfig     `yaml:"weather"`
	Retrieval    RetrievalConfig   `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/assistant/config.yaml.
// If neither exists, it writes defaults to ~/.config/assistant/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "assistant", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		DocumentPath: filepath.Join("data", "sample.pdf"),
		VectorStore:  VectorStoreConfig{Type: "memory"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.DocumentPath == "" {
		cfg.DocumentPath = filepath.Join("data", "sample.pdf")
	}
	if cfg.ChatModel.BaseURL == "" {
		cfg.ChatModel.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ChatModel.APIKeyEnv == "" {
		cfg.ChatModel.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.ChatModel.Model == "" {
		cfg.ChatModel.Model = "gpt-4o"
	}
	if cfg.ChatModel.TimeoutSecs == 0 {
		cfg.ChatModel.TimeoutSecs = 30
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = 200
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	// QDRANT_URL in the environment switches to remote mode without editing
	// the config file.
	if url := os.Getenv("QDRANT_URL"); url != "" && cfg.VectorStore.Type == "memory" {
		cfg.VectorStore.Type = "qdrant"
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		cfg.VectorStore.Qdrant.URL = url
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "pdf_collection"
		}
		if cfg.VectorStore.Qdrant.APIKeyEnv == "" {
			cfg.VectorStore.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Weather.APIKeyEnv == "" {
		cfg.Weather.APIKeyEnv = "OPENWEATHER_API_KEY"
	}
	if cfg.Weather.Resolver == "" {
		cfg.Weather.Resolver = "geocode"
	}
	if cfg.Weather.DefaultCity == "" {
		cfg.Weather.DefaultCity = "Hyderabad"
	}
	if cfg.Weather.CountryHint == "" {
		cfg.Weather.CountryHint = "IN"
	}
	if cfg.Weather.TimeoutSecs == 0 {
		cfg.Weather.TimeoutSecs = 10
	}
	if cfg.Weather.Cache.Type == "" {
		cfg.Weather.Cache.Type = "memory"
	}
	if cfg.Weather.Cache.TTLSecs == 0 {
		cfg.Weather.Cache.TTLSecs = 600
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
}
