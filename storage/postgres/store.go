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


package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/nutrirag/ai"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
)

const (
	pgUniqueViolation = "23505"
	pgDataException   = "22000"
)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool          *pgxpool.Pool
	embedder      *storage.BatchEmbedder
	poolSize      int
	batchSize     int
	retries       []storage.BatchOption
	minSimilarity float64
	logger        *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize sets the number of concurrent embedding requests.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		s.poolSize = max(size, 1)
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per request.
func WithBatchSize(size int) Option {
	return func(s *Store) error {
		s.batchSize = max(size, 1)
		return nil
	}
}

// WithMinSimilarity drops query results scoring below min.
func WithMinSimilarity(min float32) Option {
	return func(s *Store) error {
		s.minSimilarity = float64(min)
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
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore connects to dsn, verifies the connection and creates the schema
// if needed.
//
// Returns storage.Store interface to enforce abstraction.
func NewStore(ctx context.Context, dsn string, embedder ai.Embedder, opts ...Option) (storage.Store, error) {
	return newStore(ctx, dsn, embedder, opts...)
}

func newStore(ctx context.Context, dsn string, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, ErrDSNRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		poolSize:      storage.DefaultPoolSize(),
		batchSize:     storage.DefaultEmbeddingBatchSize,
		minSimilarity: math.Inf(-1),
		logger:        slog.Default().With("component", "postgres-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.pool = pool

	if err := s.Init(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	be, err := storage.NewBatchEmbedder(embedder, s.poolSize, s.batchSize, s.retries...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.embedder = be
	return s, nil
}

// Init creates the extension, tables and indexes if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata core.Metadata) (storage.Collection, error) {
	if err := storage.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if err := core.ValidateMetadata(metadata); err != nil {
		return nil, err
	}
	data, err := storage.MarshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.pool.QueryRow(ctx, insertCollectionSQL, name, data).Scan(&id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionExists, name)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created collection", "name", name)
	return &Collection{store: s, id: id, name: name, metadata: metadata.Clone()}, nil
}

// GetCollection opens an existing collection.
func (s *Store) GetCollection(ctx context.Context, name string) (storage.Collection, error) {
	var (
		id   int64
		data []byte
	)
	err := s.pool.QueryRow(ctx, selectCollectionSQL, name).Scan(&id, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	metadata, err := storage.UnmarshalMetadata(data)
	if err != nil {
		return nil, err
	}
	return &Collection{store: s, id: id, name: name, metadata: metadata}, nil
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
		return s.GetCollection(ctx, name)
	}
	return c, err
}

// DeleteCollection removes the collection. Its documents are removed by
// the foreign key cascade.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, deleteCollectionSQL, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	s.logger.Debug("deleted collection", "name", name)
	return nil
}

// ListCollections returns all collections ordered by name, with document counts.
func (s *Store) ListCollections(ctx context.Context) ([]core.CollectionInfo, error) {
	rows, err := s.pool.Query(ctx, listCollectionsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []core.CollectionInfo
	for rows.Next() {
		var (
			info  core.CollectionInfo
			data  []byte
			count int64
		)
		if err := rows.Scan(&info.Name, &data, &count); err != nil {
			return nil, err
		}
		if info.Metadata, err = storage.UnmarshalMetadata(data); err != nil {
			return nil, err
		}
		info.Count = int(count)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Close releases the embedding worker pool and the connection pool.
func (s *Store) Close() error {
	s.embedder.Release()
	if s.pool != nil {
		s.pool.Close()
		s.logger.Debug("postgres connection pool is closed")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

func isDataException(err error) bool {
	return hasCode(err, pgDataException)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
