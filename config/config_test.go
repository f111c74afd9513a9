package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 0.7, cfg.Pipeline.MinScore)
	assert.Equal(t, 512, cfg.Ingest.ChunkSize)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
llm:
  api_key: file-key
  model: gpt-4o
store:
  type: redis
  redis_addr: redis.internal:6379
pipeline:
  top_k: 8
  min_score: 0.5
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "redis.internal:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 8, cfg.Pipeline.TopK)
	assert.Equal(t, 0.5, cfg.Pipeline.MinScore)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched values keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 12, cfg.Pipeline.MaxEvidence)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: file-key\n"), 0o644))

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("DOCQA_PORT", "7070")
	t.Setenv("DOCQA_TOP_K", "3")
	t.Setenv("DOCQA_MIN_SCORE", "0.6")
	t.Setenv("DOCQA_MAX_CONTEXT_CHARS", "4096")
	t.Setenv("DOCQA_DEDUP_THRESHOLD", "0.8")
	t.Setenv("DOCQA_MAX_SUB_QUESTIONS", "4")
	t.Setenv("DOCQA_CHUNK_SIZE", "256")
	t.Setenv("DOCQA_CHUNK_OVERLAP", "32")
	t.Setenv("DOCQA_REDIS_DB", "2")
	t.Setenv("DOCQA_POSTGRES_TABLE", "corpus")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 0.6, cfg.Pipeline.MinScore)
	assert.Equal(t, 4096, cfg.Pipeline.MaxContextChars)
	assert.Equal(t, 0.8, cfg.Pipeline.DedupThreshold)
	assert.Equal(t, 4, cfg.Pipeline.MaxSubQuestions)
	assert.Equal(t, 256, cfg.Ingest.ChunkSize)
	assert.Equal(t, 32, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "corpus", cfg.Store.PostgresTable)
}

func TestValidate(t *testing.T) {
	t.Run("Valid Memory Config", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = "key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Missing API Key", func(t *testing.T) {
		cfg := Default()
		assert.Error(t, cfg.Validate())
	})

	t.Run("Unsupported Store Type", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = "key"
		cfg.Store.Type = "cassandra"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Postgres Needs Conn String", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = "key"
		cfg.Store.Type = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Store.PostgresConnString = "postgres://localhost/docqa"
		assert.NoError(t, cfg.Validate())
	})
}
