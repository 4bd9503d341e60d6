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


// Package storage provides the storage abstraction layer for nutrirag.
//
// This package defines the Store and Collection interfaces that decouple the
// vector store implementation from ingestion and retrieval. Two backends
// implement them:
//
//   - storage/badger: embedded BadgerDB store with exact cosine search
//   - storage/pgvector: PostgreSQL with the pgvector extension
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	store, err := badger.NewStore(backend, embedder)  // returns storage.Store
//
// # Collections
//
// A collection owns its documents and embeds them on write using the
// embedder the store was created with. Query embeds the query text with the
// same embedder and ranks documents by cosine similarity, highest first,
// breaking ties by insertion order.
//
// Add refuses IDs that already exist (ErrDuplicateKey) and writes nothing in
// that case; Upsert overwrites. Reloading a dataset is therefore done by
// deleting the collection first:
//
//	if err := store.DeleteCollection(ctx, name); err != nil && !errors.Is(err, storage.ErrCollectionNotFound) {
//	    return err
//	}
//
// # Serialization
//
// Badger records are encoded with mus-go serializers. Each metadata value is
// written with a kind tag so that strings, floats, ints and bools read back
// with the types they were written with. MarshalMetadata produces the same
// typed values as JSON for backends with a JSON metadata column.
//
// # Thread Safety
//
// All implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
