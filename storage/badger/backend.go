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
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/nutrirag/storage"
)

const (
	defaultSequenceBandwidth = 100
	deleteBatchSize          = 1000
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(filePath, 0755); err != nil {
				return nil, err
			}
			if info, err = os.Stat(filePath); err != nil {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "badger")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithWriteBatch executes fn against a write batch and flushes it.
// Write batches split large writes into as many transactions as needed,
// so a failure part way through can leave earlier entries written.
func (b *Backend) WithWriteBatch(fn func(wb *badger.WriteBatch) error) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	if err := fn(wb); err != nil {
		return err
	}
	return wb.Flush()
}

// GetSequence returns a BadgerDB sequence for generating sequential IDs.
// Callers must Release the sequence when done.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), defaultSequenceBandwidth)
}

// DeletePrefix removes every key starting with prefix, in batches.
func (b *Backend) DeletePrefix(prefix []byte) error {
	for {
		var keys [][]byte
		err := b.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Rewind(); iter.Valid() && len(keys) < deleteBatchSize; iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			return nil
		}, false)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}

		err = b.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
		b.logger.Debug("deleted keys", "prefix", string(prefix), "count", len(keys))
	}
}

// CountPrefix returns the number of keys starting with prefix.
func (b *Backend) CountPrefix(prefix []byte) (int, error) {
	count := 0
	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scoredDocument is a stored document with its similarity to a query vector.
type scoredDocument struct {
	doc   *storage.StoredDocument
	score float32
}

// FindSimilar scans the documents under prefix and returns the limit most
// similar to vector. Vectors are expected to be unit length so the dot
// product is the cosine similarity. Results are ordered by similarity
// descending, then by insertion sequence.
func (b *Backend) FindSimilar(ctx context.Context, prefix []byte, vector []float32, minSimilarity float32, limit int) ([]scoredDocument, error) {
	var results []scoredDocument

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var stored *storage.StoredDocument
			err := iter.Item().Value(func(val []byte) error {
				var err error
				stored, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip records without embeddings
			if len(stored.Vector) == 0 {
				continue
			}
			if len(stored.Vector) != len(vector) {
				return fmt.Errorf("%w: stored %d, query %d", storage.ErrEmbeddingMismatch, len(stored.Vector), len(vector))
			}

			similarity := dotProduct(vector, stored.Vector)
			if similarity >= minSimilarity {
				results = append(results, scoredDocument{doc: stored, score: similarity})
			}
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b scoredDocument) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		if a.doc.Seq < b.doc.Seq {
			return -1
		}
		if a.doc.Seq > b.doc.Seq {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
