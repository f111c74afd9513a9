// Package config loads the service configuration from an optional YAML
// file overlaid with environment variables. Values configure the engine;
// they never change its behavior contracts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// LLMConfig holds the reasoning and embedding client settings.
type LLMConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
}

// StoreConfig selects and configures the evidence store backend.
type StoreConfig struct {
	// Type is one of "memory", "redis", "postgres".
	Type string `yaml:"type"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	PostgresConnString string `yaml:"postgres_conn_string"`
	PostgresTable      string `yaml:"postgres_table"`
}

// PipelineConfig holds the query-pipeline tuning values.
type PipelineConfig struct {
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"`
	MaxEvidence     int     `yaml:"max_evidence"`
	MaxContextChars int     `yaml:"max_context_chars"`
	DedupThreshold  float64 `yaml:"dedup_threshold"`
	MaxSubQuestions int     `yaml:"max_sub_questions"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
}

// IngestConfig holds the ingestion-lite settings.
type IngestConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	WatchDir     string `yaml:"watch_dir"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Store    StoreConfig    `yaml:"store"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Ingest   IngestConfig   `yaml:"ingest"`
	LogLevel string         `yaml:"log_level"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.1,
			MaxTokens:      512,
		},
		Store: StoreConfig{
			Type:          "memory",
			RedisAddr:     "localhost:6379",
			PostgresTable: "evidence",
		},
		Pipeline: PipelineConfig{
			TopK:            5,
			MinScore:        0.7,
			MaxEvidence:     12,
			MaxContextChars: 8192,
			DedupThreshold:  0.9,
			MaxSubQuestions: 5,
			TimeoutSeconds:  60,
		},
		Ingest: IngestConfig{
			ChunkSize:    512,
			ChunkOverlap: 50,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration: defaults, then the YAML file (when path is
// non-empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on the configuration.
func (c *Config) applyEnv() {
	setStr(&c.Server.Host, "DOCQA_HOST")
	setStr(&c.Server.Port, "DOCQA_PORT")

	setStr(&c.LLM.APIKey, "OPENAI_API_KEY")
	setStr(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setStr(&c.LLM.Model, "OPENAI_MODEL")
	setStr(&c.LLM.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")

	setStr(&c.Store.Type, "DOCQA_STORE_TYPE")
	setStr(&c.Store.RedisAddr, "DOCQA_REDIS_ADDR")
	setStr(&c.Store.RedisPassword, "DOCQA_REDIS_PASSWORD")
	setInt(&c.Store.RedisDB, "DOCQA_REDIS_DB")
	setStr(&c.Store.PostgresConnString, "DOCQA_POSTGRES_CONN")
	setStr(&c.Store.PostgresTable, "DOCQA_POSTGRES_TABLE")

	setInt(&c.Pipeline.TopK, "DOCQA_TOP_K")
	setFloat(&c.Pipeline.MinScore, "DOCQA_MIN_SCORE")
	setInt(&c.Pipeline.MaxEvidence, "DOCQA_MAX_EVIDENCE")
	setInt(&c.Pipeline.MaxContextChars, "DOCQA_MAX_CONTEXT_CHARS")
	setFloat(&c.Pipeline.DedupThreshold, "DOCQA_DEDUP_THRESHOLD")
	setInt(&c.Pipeline.MaxSubQuestions, "DOCQA_MAX_SUB_QUESTIONS")
	setInt(&c.Pipeline.TimeoutSeconds, "DOCQA_TIMEOUT_SECONDS")

	setInt(&c.Ingest.ChunkSize, "DOCQA_CHUNK_SIZE")
	setInt(&c.Ingest.ChunkOverlap, "DOCQA_CHUNK_OVERLAP")
	setStr(&c.Ingest.WatchDir, "DOCQA_WATCH_DIR")
	setStr(&c.LogLevel, "DOCQA_LOG_LEVEL")
}

// Validate checks that required values are present.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key (or OPENAI_API_KEY) is required")
	}
	switch c.Store.Type {
	case "memory", "redis":
	case "postgres":
		if c.Store.PostgresConnString == "" {
			return fmt.Errorf("store.postgres_conn_string is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	return nil
}

// Timeout returns the pipeline deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Pipeline.TimeoutSeconds) * time.Second
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
