// Package config loads and validates server configuration from a file
// and GUARDIAN_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config contains all configuration for the agent server.
type Config struct {
	Server     ServerConfig    `mapstructure:"server" validate:"required"`
	LLM        LLMConfig       `mapstructure:"llm" validate:"required"`
	Embeddings EmbedderConfig  `mapstructure:"embeddings" validate:"required"`
	Database   DatabaseConfig  `mapstructure:"database" validate:"required"`
	Retrieval  RetrievalConfig `mapstructure:"retrieval"`
	LogLevel   string          `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address        string `mapstructure:"address" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1,max=3600"`
}

// LLMConfig configures the text/vision generation backend.
type LLMConfig struct {
	Provider       string `mapstructure:"provider" validate:"required,oneof=openai openai-compatible"`
	Model          string `mapstructure:"model" validate:"required"`
	VisionModel    string `mapstructure:"vision_model"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1,max=3600"`
}

// EmbedderConfig configures the query embedding model.
type EmbedderConfig struct {
	Provider  string `mapstructure:"provider" validate:"required,oneof=ollama"`
	Model     string `mapstructure:"model" validate:"required"`
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	Dimension int    `mapstructure:"dimension" validate:"min=0,max=4096"`
}

// DatabaseConfig configures the vector database.
type DatabaseConfig struct {
	Provider   string `mapstructure:"provider" validate:"required,oneof=milvus"`
	Host       string `mapstructure:"host" validate:"required"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Collection string `mapstructure:"collection" validate:"required"`
}

// RetrievalConfig tunes reference lookup.
type RetrievalConfig struct {
	TopK                int     `mapstructure:"top_k" validate:"min=1,max=100"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" validate:"min=0,max=1"`
}

// Address returns the Milvus connection URI.
func (d *DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			TimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
		},
		Embeddings: EmbedderConfig{
			Provider: "ollama",
			Model:    "all-minilm:v2",
			BaseURL:  "http://localhost:11434",
		},
		Database: DatabaseConfig{
			Provider:   "milvus",
			Host:       "localhost",
			Port:       19530,
			Username:   "root",
			Password:   "Milvus",
			Collection: "medical_references",
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			SimilarityThreshold: 0.6,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given file, layering environment
// variables (GUARDIAN_ prefix) on top of defaults, and validates it.
// An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
