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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nutrirag/ai"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
)

// Store implements storage.Store on top of a Backend.
// Document texts are embedded in batches on a worker pool.
type Store struct {
	backend       *Backend
	embedder      *storage.BatchEmbedder
	poolSize      int
	batchSize     int
	retries       []storage.BatchOption
	minSimilarity float32
	writeMu       sync.Mutex
	logger        *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize sets the number of concurrent embedding requests.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per request.
// Default is 64.
func WithBatchSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		s.batchSize = size
		return nil
	}
}

// WithMinSimilarity drops query results scoring below min.
// Disabled by default, so a query returns up to n documents whenever the
// collection holds any.
func WithMinSimilarity(min float32) Option {
	return func(s *Store) error {
		s.minSimilarity = min
		return nil
	}
}

// WithEmbeddingRetry retries failed embedding requests up to maxAttempts
// times with exponential backoff starting at baseDelay.
func WithEmbeddingRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Store) error {
		s.retries = []storage.BatchOption{storage.WithRetry(maxAttempts, baseDelay)}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a collection store backed by backend. The embedder turns
// document and query text into vectors.
//
// Returns storage.Store interface to enforce abstraction.
func NewStore(backend *Backend, embedder ai.Embedder, opts ...Option) (storage.Store, error) {
	return newStore(backend, embedder, opts...)
}

func newStore(backend *Backend, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		backend:       backend,
		poolSize:      storage.DefaultPoolSize(),
		batchSize:     storage.DefaultEmbeddingBatchSize,
		minSimilarity: float32(math.Inf(-1)),
		logger:        slog.Default().With("component", "badger-store"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	be, err := storage.NewBatchEmbedder(embedder, s.poolSize, s.batchSize, s.retries...)
	if err != nil {
		return nil, err
	}
	s.embedder = be
	return s, nil
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata core.Metadata) (storage.Collection, error) {
	if err := storage.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if err := core.ValidateMetadata(metadata); err != nil {
		return nil, err
	}

	id := core.IDFromContent(name)
	data, err := storage.MarshalCollection(&storage.StoredCollection{Name: name, Metadata: metadata})
	if err != nil {
		return nil, err
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(id))
		if err == nil {
			return fmt.Errorf("%w: %s", storage.ErrCollectionExists, name)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(makeCollectionKey(id), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created collection", "name", name)
	return s.newCollection(id, name, metadata), nil
}

// GetCollection opens an existing collection.
func (s *Store) GetCollection(ctx context.Context, name string) (storage.Collection, error) {
	id := core.IDFromContent(name)
	stored, err := s.loadCollection(id)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Name != name {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	return s.newCollection(id, name, stored.Metadata), nil
}

// GetOrCreateCollection opens the collection, creating it if absent.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string, metadata core.Metadata) (storage.Collection, error) {
	c, err := s.GetCollection(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, storage.ErrCollectionNotFound) {
		return nil, err
	}
	c, err = s.CreateCollection(ctx, name, metadata)
	if errors.Is(err, storage.ErrCollectionExists) {
		// Lost a race with another creator.
		return s.GetCollection(ctx, name)
	}
	return c, err
}

// DeleteCollection removes the collection description and all its documents.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	id := core.IDFromContent(name)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
		}
		if err != nil {
			return err
		}
		var stored *storage.StoredCollection
		if err := item.Value(func(val []byte) error {
			stored, err = storage.UnmarshalCollection(val)
			return err
		}); err != nil {
			return err
		}
		if stored.Name != name {
			return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
		}
		if err := tx.Delete(makeCollectionKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if err := s.backend.DeletePrefix(makeDocumentPrefix(id)); err != nil {
		return fmt.Errorf("failed to delete documents of %s: %w", name, err)
	}

	s.logger.Debug("deleted collection", "name", name)
	return nil
}

// ListCollections returns all collections ordered by name, with document counts.
func (s *Store) ListCollections(ctx context.Context) ([]core.CollectionInfo, error) {
	var stored []*storage.StoredCollection
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCollectionScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				sc, err := storage.UnmarshalCollection(val)
				if err != nil {
					return err
				}
				stored = append(stored, sc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	infos := make([]core.CollectionInfo, 0, len(stored))
	for _, sc := range stored {
		count, err := s.backend.CountPrefix(makeDocumentPrefix(core.IDFromContent(sc.Name)))
		if err != nil {
			return nil, err
		}
		infos = append(infos, core.CollectionInfo{Name: sc.Name, Metadata: sc.Metadata, Count: count})
	}
	slices.SortFunc(infos, func(a, b core.CollectionInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return infos, nil
}

// Close releases the embedding worker pool.
// The backend is owned by the caller and must be closed separately.
func (s *Store) Close() error {
	s.embedder.Release()
	return nil
}

func (s *Store) loadCollection(id core.ID) (*storage.StoredCollection, error) {
	var stored *storage.StoredCollection
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored, err = storage.UnmarshalCollection(val)
			return err
		})
	}, false)
	return stored, err
}

// embed turns texts into unit vectors.
func (s *Store) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, v := range vectors {
		vectors[i] = NormalizeVector(v)
	}
	return vectors, nil
}
