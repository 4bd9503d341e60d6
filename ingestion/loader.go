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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
)

// Default collection names and descriptions.
const (
	FoodCollection  = "nutrition_db"
	FoodDescription = "Nutrition database with calorie and food information"

	QACollection  = "nutrition_qna"
	QADescription = "Nutrition Q&A database with questions and answers about nutrition and health"
)

// Loader resets collections and bulk-loads documents into them.
type Loader struct {
	store     storage.Store
	batchSize int
	progress  io.Writer
	tokens    *TokenCounter
	logger    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithBatchSize splits the bulk add into chunks of size documents.
// Default is 0, a single add of every document.
func WithBatchSize(size int) LoaderOption {
	return func(l *Loader) error {
		if size < 0 {
			size = 0
		}
		l.batchSize = size
		return nil
	}
}

// WithProgress writes a progress line to w while adding documents.
func WithProgress(w io.Writer) LoaderOption {
	return func(l *Loader) error {
		l.progress = w
		return nil
	}
}

// WithTokenCounter reports the token counts of loaded documents in LoadResult.Tokens.
func WithTokenCounter(c *TokenCounter) LoaderOption {
	return func(l *Loader) error {
		l.tokens = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader writing to store.
func NewLoader(store storage.Store, opts ...LoaderOption) (*Loader, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	l := &Loader{
		store:  store,
		logger: slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LoadRequest describes one collection reset.
type LoadRequest struct {
	Collection  string
	Description string
	SourcePath  string // Recorded in collection metadata when set
	Documents   []*core.Document
}

// LoadResult reports a completed load.
type LoadResult struct {
	Collection storage.Collection
	RunID      string
	Added      int
	Tokens     *TokenStats // Set when the loader has a token counter
}

// Load deletes the named collection if it exists, creates it afresh and
// adds every document. Only a missing collection is tolerated on delete.
// A failure while adding leaves the documents added so far in place.
func (l *Loader) Load(ctx context.Context, req LoadRequest) (*LoadResult, error) {
	if err := storage.ValidateCollectionName(req.Collection); err != nil {
		return nil, err
	}
	if err := core.ValidateDocuments(req.Documents); err != nil {
		return nil, err
	}

	err := l.store.DeleteCollection(ctx, req.Collection)
	switch {
	case err == nil:
		l.logger.Info("deleted existing collection", "collection", req.Collection)
	case errors.Is(err, storage.ErrCollectionNotFound):
	default:
		return nil, fmt.Errorf("failed to reset collection %s: %w", req.Collection, err)
	}

	var tokens *TokenStats
	if l.tokens != nil {
		stats := l.tokens.Stats(req.Documents)
		tokens = &stats
		l.logger.Debug("token counts",
			"collection", req.Collection,
			"total", stats.Total,
			"max", stats.Max,
			"max_id", stats.MaxID)
	}

	runID := uuid.NewString()
	metadata := core.Metadata{}
	core.Description.Set(metadata, req.Description)
	core.IngestRunID.Set(metadata, runID)
	if req.SourcePath != "" {
		core.SourcePath.Set(metadata, req.SourcePath)
	}

	collection, err := l.store.CreateCollection(ctx, req.Collection, metadata)
	if err != nil {
		return nil, err
	}

	added, err := l.add(ctx, collection, req.Documents)
	result := &LoadResult{Collection: collection, RunID: runID, Added: added, Tokens: tokens}
	if err != nil {
		return result, fmt.Errorf("added %d of %d documents to %s: %w",
			added, len(req.Documents), req.Collection, err)
	}

	l.logger.Info("loaded collection",
		"collection", req.Collection,
		"documents", added,
		"run_id", runID)
	return result, nil
}

func (l *Loader) add(ctx context.Context, collection storage.Collection, docs []*core.Document) (int, error) {
	size := l.batchSize
	if size == 0 || size > len(docs) {
		size = len(docs)
	}
	if size == 0 {
		return 0, nil
	}

	var tracker *ProgressTracker
	if l.progress != nil {
		tracker = NewProgressTracker(l.progress, "Adding documents", len(docs), size)
		tracker.Start()
		defer tracker.Finish()
	}

	added := 0
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		if err := collection.Add(ctx, docs[start:end]...); err != nil {
			return added, err
		}
		added = end
		if tracker != nil {
			tracker.Add(end - start)
		}
	}
	return added, nil
}
