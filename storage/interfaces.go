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

	"github.com/poiesic/nutrirag/core"
)

// Store manages named vector collections.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateCollection creates an empty collection.
	// Returns ErrCollectionExists if the name is taken.
	CreateCollection(ctx context.Context, name string, metadata core.Metadata) (Collection, error)

	// GetCollection opens an existing collection.
	// Returns ErrCollectionNotFound if it does not exist.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// GetOrCreateCollection opens the collection, creating it with metadata if absent.
	// Metadata of an existing collection is left untouched.
	GetOrCreateCollection(ctx context.Context, name string, metadata core.Metadata) (Collection, error)

	// DeleteCollection removes the collection and all of its documents.
	// Returns ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns all collections ordered by name.
	ListCollections(ctx context.Context) ([]core.CollectionInfo, error)

	// Close releases resources held by the store.
	Close() error
}

// Collection is a named set of documents searchable by text similarity.
// Document text is embedded by the collection on write and the query text on search.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Metadata returns the metadata the collection was created with.
	Metadata() core.Metadata

	// Add inserts documents. Nothing is written and ErrDuplicateKey is
	// returned if any ID already exists in the collection.
	Add(ctx context.Context, docs ...*core.Document) error

	// Upsert inserts documents, overwriting existing IDs.
	Upsert(ctx context.Context, docs ...*core.Document) error

	// Get retrieves a document by ID.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*core.Document, error)

	// Count returns the number of documents.
	Count(ctx context.Context) (int, error)

	// Query returns up to n documents most similar to text, highest similarity first.
	// Returns ErrInvalidQuery if n < 1.
	Query(ctx context.Context, text string, n int) ([]core.QueryResult, error)
}
