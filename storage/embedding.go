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


package storage

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/nutrirag/ai"
)

const DefaultEmbeddingBatchSize = 64

// ErrEmbeddingCount is returned when the embedder returns a different
// number of vectors than texts it was given.
var ErrEmbeddingCount = errors.New("embedder returned wrong number of vectors")

// BatchEmbedder splits texts into batches and embeds the batches
// concurrently on a worker pool. Backends use it to embed documents on write.
type BatchEmbedder struct {
	embedder    ai.Embedder
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
}

// BatchOption configures a BatchEmbedder.
type BatchOption func(*BatchEmbedder)

// WithRetry retries a failed embedding request up to maxAttempts times in
// total, waiting baseDelay before the first retry and doubling it after.
// Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) BatchOption {
	return func(b *BatchEmbedder) {
		b.maxAttempts = max(maxAttempts, 1)
		b.retryDelay = baseDelay
	}
}

// DefaultPoolSize is runtime.NumCPU() / 2, with a minimum of 1.
func DefaultPoolSize() int {
	return max(runtime.NumCPU()/2, 1)
}

// NewBatchEmbedder creates a BatchEmbedder running at most poolSize
// embedding requests at once with batchSize texts each.
func NewBatchEmbedder(embedder ai.Embedder, poolSize, batchSize int, opts ...BatchOption) (*BatchEmbedder, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	b := &BatchEmbedder{
		embedder:    embedder,
		pool:        pool,
		batchSize:   batchSize,
		maxAttempts: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// EmbedQuery embeds a single query text.
func (b *BatchEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vector, err = b.embedder.EmbedText(ctx, text)
		return err
	}, b.maxAttempts, b.retryDelay)
	return vector, err
}

func (b *BatchEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var batch [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		batch, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.maxAttempts, b.retryDelay)
	return batch, err
}

// EmbedDocuments returns one vector per text, in input order.
// The first failing batch aborts the call.
func (b *BatchEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				setErr(err)
				return
			}
			batch, err := b.embedBatch(ctx, texts[start:end])
			if err != nil {
				setErr(fmt.Errorf("failed to embed documents %d-%d: %w", start, end-1, err))
				return
			}
			if len(batch) != end-start {
				setErr(fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(batch), end-start))
				return
			}
			copy(vectors[start:end], batch)
		})
		if err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Release stops the worker pool.
func (b *BatchEmbedder) Release() {
	b.pool.Release()
}
