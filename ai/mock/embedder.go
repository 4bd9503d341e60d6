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
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"sync"
)

// DefaultDimensions is the vector size produced by MockEmbedder.
const DefaultDimensions = 256

var wordPattern = regexp.MustCompile(`\w+`)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
//
// The default behavior is a bag-of-words hashing embedder: every lower-cased
// word is hashed into a bucket and the counts are normalized to unit length.
// Texts sharing words therefore have positive cosine similarity and texts
// sharing no words score zero.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding from the words in text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.EmbedTextFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}

	return BagOfWordsVector(text, DefaultDimensions), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.EmbedTextsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = BagOfWordsVector(text, DefaultDimensions)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// BagOfWordsVector hashes each word of text into one of dim buckets and
// returns the unit-length count vector. Text without words yields a zero vector.
func BagOfWordsVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%uint32(dim)]++
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v * v)
	}
	if sumSquares == 0 {
		return vector
	}
	norm := float32(1 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}
