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

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
)

// Collection is a collection stored in PostgreSQL.
type Collection struct {
	store    *Store
	id       int64
	name     string
	metadata core.Metadata
}

var _ storage.Collection = (*Collection)(nil)

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Metadata() core.Metadata {
	return c.metadata.Clone()
}

// Add inserts documents in one transaction. Nothing is written if any ID
// already exists.
func (c *Collection) Add(ctx context.Context, docs ...*core.Document) error {
	return c.write(ctx, docs, insertDocumentSQL)
}

// Upsert inserts documents, overwriting existing IDs.
func (c *Collection) Upsert(ctx context.Context, docs ...*core.Document) error {
	return c.write(ctx, docs, upsertDocumentSQL)
}

func (c *Collection) write(ctx context.Context, docs []*core.Document, stmt string) error {
	if len(docs) == 0 {
		return nil
	}
	if err := core.ValidateDocuments(docs); err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	vectors, err := c.store.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}

	metadata := make([][]byte, len(docs))
	for i, doc := range docs {
		if metadata[i], err = storage.MarshalMetadata(doc.Metadata); err != nil {
			return err
		}
	}

	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, lockCollectionSQL, c.id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, c.name)
	}
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, doc := range docs {
		batch.Queue(stmt, c.id, doc.ID, doc.Text, metadata[i], pgvector.NewVector(vectors[i]))
	}
	results := tx.SendBatch(ctx, batch)
	for _, doc := range docs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, doc.ID)
			}
			if isDataException(err) {
				return fmt.Errorf("%w: %w", storage.ErrEmbeddingMismatch, err)
			}
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	c.store.logger.Debug("wrote documents", "collection", c.name, "count", len(docs))
	return nil
}

// Get retrieves a document by ID.
func (c *Collection) Get(ctx context.Context, id string) (*core.Document, error) {
	var (
		text string
		data []byte
	)
	err := c.store.pool.QueryRow(ctx, selectDocumentSQL, c.id, id).Scan(&text, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	metadata, err := storage.UnmarshalMetadata(data)
	if err != nil {
		return nil, err
	}
	return &core.Document{ID: id, Text: text, Metadata: metadata}, nil
}

// Count returns the number of documents.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int64
	if err := c.store.pool.QueryRow(ctx, countDocumentsSQL, c.id).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Query returns up to n documents ordered by cosine similarity to text.
// Ties keep insertion order.
func (c *Collection) Query(ctx context.Context, text string, n int) ([]core.QueryResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be at least 1, got %d", storage.ErrInvalidQuery, n)
	}

	vector, err := c.store.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := c.store.pool.Query(ctx, queryDocumentsSQL,
		c.id, pgvector.NewVector(vector), n, c.store.minSimilarity)
	if err != nil {
		if isDataException(err) {
			return nil, fmt.Errorf("%w: %w", storage.ErrEmbeddingMismatch, err)
		}
		return nil, err
	}
	defer rows.Close()

	var results []core.QueryResult
	for rows.Next() {
		var (
			doc   core.Document
			data  []byte
			score float64
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &data, &score); err != nil {
			return nil, err
		}
		if doc.Metadata, err = storage.UnmarshalMetadata(data); err != nil {
			return nil, err
		}
		results = append(results, core.QueryResult{Document: &doc, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		if isDataException(err) {
			return nil, fmt.Errorf("%w: %w", storage.ErrEmbeddingMismatch, err)
		}
		return nil, err
	}
	return results, nil
}
