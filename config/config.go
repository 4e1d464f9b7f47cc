package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the media-mind backend.
type Config struct {
	Segment   SegmentConfig   `yaml:"segment"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SegmentConfig holds text segmentation configuration.
type SegmentConfig struct {
	ChunkSize int    `yaml:"chunk_size"`
	Overlap   int    `yaml:"overlap"`
	Strategy  string `yaml:"strategy"` // "fixed", "sentence", "paragraph"
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-ada-002"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // Override for OpenAI-compatible servers
	BatchSize int    `yaml:"batch_size"`
	Dimension int    `yaml:"dimension"` // Used by the mock provider
}

// SearchConfig holds semantic search configuration.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// IngestConfig holds file discovery configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Segment: SegmentConfig{
			ChunkSize: 1000,
			Overlap:   200,
			Strategy:  "fixed",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-ada-002",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 100,
			Dimension: 1536,
		},
		Search: SearchConfig{
			TopK: 5,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, layered over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// mediamind.yaml, then .mediamind/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "mediamind.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".mediamind", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the path to the document database.
func StorePath(dir string) string {
	return filepath.Join(dir, ".mediamind", "store.db")
}

// IndexDir returns the directory holding the vector index snapshot.
func IndexDir(dir string) string {
	return filepath.Join(dir, ".mediamind", "index")
}

// EnsureDataDir ensures the .mediamind data directories exist.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(IndexDir(dir), 0755)
}
