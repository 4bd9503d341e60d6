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


package nutrirag

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/nutrirag/ai"
	"github.com/poiesic/nutrirag/ai/openai"
	"github.com/poiesic/nutrirag/config"
	"github.com/poiesic/nutrirag/ingestion"
	"github.com/poiesic/nutrirag/retrieval"
	"github.com/poiesic/nutrirag/storage"
	"github.com/poiesic/nutrirag/storage/badger"
	"github.com/poiesic/nutrirag/storage/postgres"
)

// Database ties a vector store to the AI provider that embeds its documents.
type Database struct {
	backend  *badger.Backend // nil unless the badger backend is used
	store    storage.Store
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig      *ai.Config
	provider      ai.AIProvider
	inMemory      bool
	postgresDSN   string
	minSimilarity *float32
	retryAttempts int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// WithAIConfig sets the provider configuration. Ignored when WithProvider is used.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing AI provider instead of creating one.
// The Database does not close it.
func WithProvider(p ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = p
	}
}

// WithInMemory keeps the badger store in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithPostgres stores collections in Postgres with pgvector instead of badger.
func WithPostgres(dsn string) DatabaseOption {
	return func(o *databaseOptions) {
		o.postgresDSN = dsn
	}
}

// WithMinSimilarity drops query results below min.
func WithMinSimilarity(min float32) DatabaseOption {
	return func(o *databaseOptions) {
		o.minSimilarity = &min
	}
}

// WithEmbeddingRetry retries failed embedding requests up to maxAttempts
// times with exponential backoff starting at baseDelay.
func WithEmbeddingRetry(maxAttempts int, baseDelay time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.retryAttempts = maxAttempts
		o.retryDelay = baseDelay
	}
}

// WithDatabaseLogger sets a custom logger.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the collection store at filePath, or in Postgres when
// WithPostgres is given.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default().With("component", "nutrirag"),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	ownsProvider := false
	if provider == nil {
		p, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
		provider = p
		ownsProvider = true
	}

	db := &Database{logger: options.logger}
	if ownsProvider {
		db.provider = provider
	}

	var err error
	if options.postgresDSN != "" {
		var pgOpts []postgres.Option
		if options.retryAttempts > 1 {
			pgOpts = append(pgOpts, postgres.WithEmbeddingRetry(options.retryAttempts, options.retryDelay))
		}
		if options.minSimilarity != nil {
			pgOpts = append(pgOpts, postgres.WithMinSimilarity(*options.minSimilarity))
		}
		db.store, err = postgres.NewStore(ctx, options.postgresDSN, provider.Embedder(), pgOpts...)
	} else {
		db.backend, err = badger.OpenBackend(filePath, options.inMemory)
		if err == nil {
			var badgerOpts []badger.Option
			if options.retryAttempts > 1 {
				badgerOpts = append(badgerOpts, badger.WithEmbeddingRetry(options.retryAttempts, options.retryDelay))
			}
			if options.minSimilarity != nil {
				badgerOpts = append(badgerOpts, badger.WithMinSimilarity(*options.minSimilarity))
			}
			db.store, err = badger.NewStore(db.backend, provider.Embedder(), badgerOpts...)
		}
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open creates a Database from application configuration.
func Open(ctx context.Context, cfg *config.Config, opts ...DatabaseOption) (*Database, error) {
	base := []DatabaseOption{
		WithAIConfig(cfg.AI()),
		WithEmbeddingRetry(cfg.OpenAI.MaxAttempts, time.Duration(cfg.OpenAI.RetryDelayMS)*time.Millisecond),
	}
	if cfg.Storage.Backend == config.BackendPostgres {
		base = append(base, WithPostgres(cfg.Storage.PostgresDSN))
	}
	return NewDatabase(ctx, cfg.Storage.DataDir, append(base, opts...)...)
}

// Close releases the store, the backend and any provider the Database created.
func (db *Database) Close() error {
	var errs []error
	if db.store != nil {
		if err := db.store.Close(); err != nil {
			db.logger.Error("error closing store", "err", err)
			errs = append(errs, err)
		}
	}
	if db.backend != nil {
		if err := db.backend.Close(); err != nil {
			db.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store returns the collection store.
func (db *Database) Store() storage.Store {
	return db.store
}

// NewLoader creates a collection loader over the store.
func (db *Database) NewLoader(opts ...ingestion.LoaderOption) (*ingestion.Loader, error) {
	return ingestion.NewLoader(db.store, opts...)
}

// SetupCalories rebuilds the food collection from the calorie CSV at csvPath.
func (db *Database) SetupCalories(ctx context.Context, csvPath string, opts ...ingestion.LoaderOption) (*ingestion.LoadResult, error) {
	docs, err := ingestion.PrepareFoodDocuments(csvPath)
	if err != nil {
		return nil, err
	}
	loader, err := db.NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, ingestion.LoadRequest{
		Collection:  ingestion.FoodCollection,
		Description: ingestion.FoodDescription,
		SourcePath:  csvPath,
		Documents:   docs,
	})
}

// SetupQA rebuilds the Q&A collection from a sample of the records in the text file at path.
func (db *Database) SetupQA(
	ctx context.Context,
	path string,
	fraction float64,
	seed uint64,
	opts ...ingestion.LoaderOption,
) (*ingestion.LoadResult, ingestion.SampleStats, error) {
	docs, stats, err := ingestion.PrepareQADocuments(path, fraction, seed)
	if err != nil {
		return nil, stats, err
	}
	loader, err := db.NewLoader(opts...)
	if err != nil {
		return nil, stats, err
	}
	result, err := loader.Load(ctx, ingestion.LoadRequest{
		Collection:  ingestion.QACollection,
		Description: ingestion.QADescription,
		SourcePath:  path,
		Documents:   docs,
	})
	return result, stats, err
}

// CalorieTool opens the food collection and wraps it in the calorie lookup tool.
func (db *Database) CalorieTool(ctx context.Context, opts ...retrieval.Option) (*retrieval.Tool, error) {
	collection, err := db.store.GetCollection(ctx, ingestion.FoodCollection)
	if err != nil {
		return nil, err
	}
	return retrieval.NewCalorieTool(collection, opts...)
}

// QATool opens the Q&A collection and wraps it in the nutrition Q&A tool.
func (db *Database) QATool(ctx context.Context, opts ...retrieval.Option) (*retrieval.Tool, error) {
	collection, err := db.store.GetCollection(ctx, ingestion.QACollection)
	if err != nil {
		return nil, err
	}
	return retrieval.NewQATool(collection, opts...)
}
