package nutrirag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/nutrirag/ai/mock"
	"github.com/poiesic/nutrirag/config"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/ingestion"
	"github.com/poiesic/nutrirag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caloriesCSV = `FoodCategory,FoodItem,per100grams,Cals_per100grams,KJ_per100grams
Fruit,Banana,100g,89 cal,372 kJ
Fruit,Apple,100g,52 cal,218 kJ
Vegetables,Broccoli,100g,34 cal,142 kJ
`

const questionsText = `Question: Is quinoa gluten free?
Answer: Yes, quinoa is naturally gluten free.

Question: Should pregnant women avoid fish?
Answer: Most fish is safe in moderation during pregnancy.

Question: Missing answer here?
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(context.Background(), "", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "chroma")
		db, err := NewDatabase(ctx, tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Store())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
		assert.DirExists(t, tmpDir)
	})

	t.Run("default provider", func(t *testing.T) {
		db, err := NewDatabase(ctx, t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, db.provider)
		assert.NoError(t, db.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		db, err := NewDatabase(ctx, tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestOpen_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "store")

	db, err := Open(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()
	assert.DirExists(t, cfg.Storage.DataDir)
}

func TestDatabase_SetupCalories(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	csvPath := writeFile(t, "calories.csv", caloriesCSV)

	result, err := db.SetupCalories(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.NotEmpty(t, result.RunID)

	coll, err := db.Store().GetCollection(ctx, ingestion.FoodCollection)
	require.NoError(t, err)
	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, csvPath, core.SourcePath.Get(coll.Metadata()))

	tool, err := db.CalorieTool(ctx)
	require.NoError(t, err)
	out, err := tool.Lookup(ctx, "banana", 1)
	require.NoError(t, err)
	assert.Equal(t, "Banana (Fruit): 89.0 calories per 100g", out)

	// Running setup again replaces the collection.
	result, err = db.SetupCalories(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	count, err = result.Collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDatabase_SetupQA(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	path := writeFile(t, "questions.txt", questionsText)

	result, stats, err := db.SetupQA(ctx, path, 1.0, ingestion.DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, ingestion.SampleStats{Valid: 2, Dropped: 1, Sampled: 2}, stats)
	assert.Equal(t, 2, result.Added)

	tool, err := db.QATool(ctx)
	require.NoError(t, err)
	out, err := tool.Lookup(ctx, "quinoa", 1)
	require.NoError(t, err)
	assert.Contains(t, out, "Question: Is quinoa gluten free?")
}

func TestDatabase_ToolsRequireCollections(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	_, err := db.CalorieTool(ctx)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	_, err = db.QATool(ctx)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
}

func TestDatabase_SetupMissingFile(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	_, err := db.SetupCalories(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, _, err = db.SetupQA(ctx, filepath.Join(t.TempDir(), "missing.txt"), 0.05, 42)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(context.Background(), t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestDatabase_EmbeddingRetry(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("rate limited")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.BagOfWordsVector(text, mock.DefaultDimensions)
		}
		return out, nil
	}

	db, err := NewDatabase(ctx, "",
		WithInMemory(),
		WithProvider(mock.NewMockProviderWithServices(embedder, nil)),
		WithEmbeddingRetry(2, time.Millisecond),
	)
	require.NoError(t, err)
	defer db.Close()

	result, err := db.SetupCalories(ctx, writeFile(t, "calories.csv", caloriesCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, int32(2), calls.Load())
}
