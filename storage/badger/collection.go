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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
)

// Collection implements storage.Collection for one named collection of a Store.
type Collection struct {
	store    *Store
	id       core.ID
	name     string
	metadata core.Metadata
}

var _ storage.Collection = (*Collection)(nil)

func (s *Store) newCollection(id core.ID, name string, metadata core.Metadata) *Collection {
	return &Collection{
		store:    s,
		id:       id,
		name:     name,
		metadata: metadata.Clone(),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Metadata returns a copy of the collection metadata.
func (c *Collection) Metadata() core.Metadata {
	return c.metadata.Clone()
}

// Add inserts documents, failing with storage.ErrDuplicateKey before writing
// anything if an ID is already present.
func (c *Collection) Add(ctx context.Context, docs ...*core.Document) error {
	return c.write(ctx, docs, false)
}

// Upsert inserts documents, replacing existing ones with the same ID.
func (c *Collection) Upsert(ctx context.Context, docs ...*core.Document) error {
	return c.write(ctx, docs, true)
}

func (c *Collection) write(ctx context.Context, docs []*core.Document, overwrite bool) error {
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
	vectors, err := c.store.embed(ctx, texts)
	if err != nil {
		return err
	}

	c.store.writeMu.Lock()
	defer c.store.writeMu.Unlock()

	err = c.store.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionKey(c.id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, c.name)
			}
			return err
		}
		if overwrite {
			return nil
		}
		for _, doc := range docs {
			_, err := tx.Get(makeDocumentKey(c.id, doc.ID))
			if err == nil {
				return fmt.Errorf("%w: %s in %s", storage.ErrDuplicateKey, doc.ID, c.name)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	seq, err := c.store.backend.GetSequence(makeSequenceKey(c.id))
	if err != nil {
		return err
	}
	defer seq.Release()

	err = c.store.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for i, doc := range docs {
			n, err := seq.Next()
			if err != nil {
				return err
			}
			data, err := storage.MarshalDocument(&storage.StoredDocument{
				Document: doc,
				Vector:   vectors[i],
				Seq:      n,
			})
			if err != nil {
				return err
			}
			if err := wb.Set(makeDocumentKey(c.id, doc.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.store.logger.Debug("wrote documents", "collection", c.name, "count", len(docs), "overwrite", overwrite)
	return nil
}

// Get retrieves a document by ID.
func (c *Collection) Get(ctx context.Context, id string) (*core.Document, error) {
	var doc *core.Document
	err := c.store.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(c.id, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored, err := storage.UnmarshalDocument(val)
			if err != nil {
				return err
			}
			doc = stored.Document
			return nil
		})
	}, false)
	return doc, err
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.store.backend.CountPrefix(makeDocumentPrefix(c.id))
}

// Query embeds text and returns up to n nearest documents, highest
// similarity first. The text is used as given.
func (c *Collection) Query(ctx context.Context, text string, n int) ([]core.QueryResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be at least 1, got %d", storage.ErrInvalidQuery, n)
	}

	vector, err := c.store.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	hits, err := c.store.backend.FindSimilar(ctx, makeDocumentPrefix(c.id), NormalizeVector(vector), c.store.minSimilarity, n)
	if err != nil {
		return nil, err
	}

	results := make([]core.QueryResult, len(hits))
	for i, hit := range hits {
		results[i] = core.QueryResult{Document: hit.doc.Document, Score: hit.score}
	}

	c.store.logger.Debug("query", "collection", c.name, "n", n, "hits", len(results))
	return results, nil
}
