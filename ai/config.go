// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1" or "http://localhost:11434/v1"
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API used by agents.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// ChatModel is the model identifier used by agents.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	ChatModel string

	// APIKey authenticates against the hosts. Local OpenAI-compatible servers
	// accept any value; "none" is used when empty.
	APIKey string

	// EmbeddingBatchSize is the number of texts sent per embedding request.
	// Default: 512
	EmbeddingBatchSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingBatchSize sets the number of texts per embedding request.
func WithEmbeddingBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBatchSize = size
	}
}

// DefaultConfig returns a Config targeting the hosted OpenAI API.
// Both embedding and chat use the same host.
func DefaultConfig() *Config {
	defaultHost := "https://api.openai.com/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		ChatHost:           defaultHost,
		EmbeddingModel:     "text-embedding-3-small",
		ChatModel:          "gpt-4o-mini",
		EmbeddingBatchSize: 512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("embeddinggemma"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ChatHost = normalizeHost(c.ChatHost)
	if c.EmbeddingBatchSize <= 0 {
		c.EmbeddingBatchSize = 512
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Token returns the API key, or "none" for servers without authentication.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return "none"
	}
	return c.APIKey
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	return nil
}
