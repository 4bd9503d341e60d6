package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "https://api.openai.com/v1", cfg.ChatHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 512, cfg.EmbeddingBatchSize)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
	})

	t.Run("with custom models and key", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("embeddinggemma"),
			WithChatModel("qwen2.5:3b"),
			WithAPIKey("sk-test"),
			WithEmbeddingBatchSize(16),
		)

		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
		assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, 16, cfg.EmbeddingBatchSize)
	})
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "already has v1", host: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
		{name: "missing v1", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "empty stays empty", host: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, ChatHost: tt.host}
			cfg.Normalize()

			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.ChatHost)
			assert.Equal(t, 512, cfg.EmbeddingBatchSize)
		})
	}
}

func TestConfig_Token(t *testing.T) {
	assert.Equal(t, "none", NewConfig().Token())
	assert.Equal(t, "sk-abc", NewConfig(WithAPIKey("sk-abc")).Token())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid default config", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	missing := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, want: "EmbeddingHost"},
		{name: "chat host", mutate: func(c *Config) { c.ChatHost = "" }, want: "ChatHost"},
		{name: "embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, want: "EmbeddingModel"},
		{name: "chat model", mutate: func(c *Config) { c.ChatModel = "" }, want: "ChatModel"},
	}
	for _, tt := range missing {
		t.Run("missing "+tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
