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


package openai

import (
	"log/slog"

	"github.com/poiesic/nutrirag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the embedder and the chat model.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	chat     *openai.LLM
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	chat, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		chat:     chat,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// NewChatModel creates a standalone chat model for the configured chat host.
func NewChatModel(config *ai.Config) (llms.Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newChatModel(config)
}

func newChatModel(config *ai.Config) (*openai.LLM, error) {
	return openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.ChatModel),
	)
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the chat model used by agents.
func (p *Provider) ChatModel() llms.Model {
	return p.chat
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
