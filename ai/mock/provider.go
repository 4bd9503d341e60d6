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


package mock

import (
	"github.com/poiesic/nutrirag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// MockProvider is a test double for ai.AIProvider.
// It aggregates a mock embedder and a scripted chat model.
type MockProvider struct {
	embedder *MockEmbedder
	chat     llms.Model
}

// NewMockProvider creates a new mock provider. The chat model replies with
// the given responses in order, cycling when exhausted.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder() to access the concrete embedder for test assertions.
func NewMockProvider(responses ...string) ai.AIProvider {
	if len(responses) == 0 {
		responses = []string{"ok"}
	}
	return &MockProvider{
		embedder: NewMockEmbedder(),
		chat:     fake.NewFakeLLM(responses),
	}
}

// NewMockProviderWithServices creates a mock provider with custom services.
func NewMockProviderWithServices(embedder *MockEmbedder, chat llms.Model) ai.AIProvider {
	return &MockProvider{
		embedder: embedder,
		chat:     chat,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the scripted chat model.
func (p *MockProvider) ChatModel() llms.Model {
	return p.chat
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
