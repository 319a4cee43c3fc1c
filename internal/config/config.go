// Package config loads the application configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Address        string   `yaml:"address"`        // listen address, e.g. ":8080"
	AllowedOrigins []string `yaml:"allowedOrigins"` // CORS origin allow list
}

// MilvusConfig defines the vector index connection. An empty address
// selects the in-memory index.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

// RedisConfig defines the embedding cache connection. An empty address
// disables caching.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"` // e.g. "24h"
}

// MongoConfig defines the document store connection. An empty URI
// selects the in-memory store.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LLMConfig selects the generation provider and its credentials.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "gemini"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Timeout  string `yaml:"timeout"` // per generation call, e.g. "30s"
}

// LoggerConfig defines the log level.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Milvus MilvusConfig `yaml:"milvus"`
	Redis  RedisConfig  `yaml:"redis"`
	Mongo  MongoConfig  `yaml:"mongo"`
	LLM    LLMConfig    `yaml:"llm"`
	Logger LoggerConfig `yaml:"logger"`
}

// LoadConfig loads and parses the YAML configuration file at path,
// then applies defaults for unset fields.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Milvus.Collection == "" {
		c.Milvus.Collection = "storytailor_knowledge"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "storytailor"
	}
	if c.Redis.TTL == "" {
		c.Redis.TTL = "24h"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.Timeout == "" {
		c.LLM.Timeout = "30s"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
}

// CacheTTL parses the Redis TTL duration.
func (c *RedisConfig) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// GenerationTimeout parses the per-call LLM timeout.
func (c *LLMConfig) GenerationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
