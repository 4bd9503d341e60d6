package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chroma")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func putDocument(t *testing.T, backend *Backend, collID core.ID, id string, vector []float32, seq uint64) {
	t.Helper()
	data, err := storage.MarshalDocument(&storage.StoredDocument{
		Document: &core.Document{ID: id, Text: "text " + id},
		Vector:   vector,
		Seq:      seq,
	})
	require.NoError(t, err)
	require.NoError(t, backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		return wb.Set(makeDocumentKey(collID, id), data)
	}))
}

func TestFindSimilar_NoRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	results, err := backend.FindSimilar(context.Background(), makeDocumentPrefix(1), []float32{1, 0}, -1, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_OrderAndLimit(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	putDocument(t, backend, 1, "far", []float32{0, 1}, 1)
	putDocument(t, backend, 1, "near", []float32{1, 0}, 2)
	putDocument(t, backend, 1, "mid", NormalizeVector([]float32{1, 1}), 3)
	// A different collection must not leak into the scan.
	putDocument(t, backend, 12, "other", []float32{1, 0}, 1)

	results, err := backend.FindSimilar(context.Background(), makeDocumentPrefix(1), []float32{1, 0}, -1, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].doc.Document.ID)
	assert.Equal(t, "mid", results[1].doc.Document.ID)
	assert.InDelta(t, 1.0, results[0].score, 1e-6)
}

func TestFindSimilar_TiesKeepInsertionOrder(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	// Keys sort as a, b, c but insertion order is c, a, b.
	putDocument(t, backend, 1, "c", []float32{1, 0}, 1)
	putDocument(t, backend, 1, "a", []float32{1, 0}, 2)
	putDocument(t, backend, 1, "b", []float32{1, 0}, 3)

	results, err := backend.FindSimilar(context.Background(), makeDocumentPrefix(1), []float32{1, 0}, -1, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "c", results[0].doc.Document.ID)
	assert.Equal(t, "a", results[1].doc.Document.ID)
	assert.Equal(t, "b", results[2].doc.Document.ID)
}

func TestFindSimilar_MinSimilarity(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	putDocument(t, backend, 1, "orthogonal", []float32{0, 1}, 1)

	results, err := backend.FindSimilar(context.Background(), makeDocumentPrefix(1), []float32{1, 0}, 0.1, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_DimensionMismatch(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	putDocument(t, backend, 1, "x", []float32{1, 0, 0}, 1)

	_, err = backend.FindSimilar(context.Background(), makeDocumentPrefix(1), []float32{1, 0}, -1, 3)
	assert.ErrorIs(t, err, storage.ErrEmbeddingMismatch)
}

func TestFindSimilar_CancelledContext(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	putDocument(t, backend, 1, "x", []float32{1, 0}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = backend.FindSimilar(ctx, makeDocumentPrefix(1), []float32{1, 0}, -1, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeletePrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	for i := range deleteBatchSize + 5 {
		putDocument(t, backend, 1, fmt.Sprintf("doc_%d", i), []float32{1}, uint64(i))
	}
	putDocument(t, backend, 2, "keep", []float32{1}, 1)

	require.NoError(t, backend.DeletePrefix(makeDocumentPrefix(1)))

	n, err := backend.CountPrefix(makeDocumentPrefix(1))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = backend.CountPrefix(makeDocumentPrefix(2))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}
