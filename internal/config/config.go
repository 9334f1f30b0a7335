// Package config provides environment configuration for the API server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Provider API keys
	AnthropicAPIKey string
	OpenAIAPIKey    string
	TavilyAPIKey    string

	// Agent settings
	MaxAgentSteps int

	// Storage roots
	ArtifactsDir string
	UploadsDir   string
	ExportsDir   string

	// Model catalog
	ModelsConfigPath string

	// Conversation retention
	MaxConversations int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),

		// Providers
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		TavilyAPIKey:    getEnv("TAVILY_API_KEY", ""),

		// Agent
		MaxAgentSteps: getIntEnv("MAX_AGENT_STEPS", 15),

		// Storage
		ArtifactsDir: getEnv("ARTIFACTS_DIR", "artifacts"),
		UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
		ExportsDir:   getEnv("EXPORTS_DIR", "exports"),

		// Models
		ModelsConfigPath: getEnv("MODELS_CONFIG", "config/models.yaml"),

		// Retention
		MaxConversations: getIntEnv("MAX_CONVERSATIONS", 1000),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// EnsureDirs creates the storage roots if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ArtifactsDir, c.UploadsDir, c.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ModelInfo describes one entry in the model catalog.
type ModelInfo struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Provider string `yaml:"provider" json:"provider"`
}

// ModelCatalog is the static model catalog served by GET /models.
type ModelCatalog struct {
	Models       []ModelInfo `yaml:"models" json:"models"`
	DefaultModel string      `yaml:"default_model" json:"default_model"`
}

// LoadModelCatalog reads the model catalog from a YAML file.
func LoadModelCatalog(path string) (*ModelCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}

	var catalog ModelCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}

	if len(catalog.Models) == 0 {
		return nil, fmt.Errorf("model catalog %s lists no models", path)
	}
	if catalog.DefaultModel == "" {
		catalog.DefaultModel = catalog.Models[0].ID
	}

	return &catalog, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
