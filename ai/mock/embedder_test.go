package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder()
	ctx := context.Background()

	v1, err := e.EmbedText(ctx, "Food: Banana")
	require.NoError(t, err)
	v2, err := e.EmbedText(ctx, "food: banana")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, DefaultDimensions)
	assert.InDelta(t, 1.0, dot(v1, v1), 1e-5)
	assert.Equal(t, 2, e.CallCount())
}

func TestMockEmbedder_SharedWordsAreSimilar(t *testing.T) {
	banana := BagOfWordsVector("Food: Banana Category: Fruit", DefaultDimensions)
	query := BagOfWordsVector("banana", DefaultDimensions)
	empty := BagOfWordsVector("   ", DefaultDimensions)

	assert.Greater(t, dot(banana, query), float32(0))
	assert.Equal(t, float32(0), dot(banana, empty))
}

func TestMockEmbedder_EmbedTexts(t *testing.T) {
	e := NewMockEmbedder()
	vectors, err := e.EmbedTexts(context.Background(), []string{"apple", "banana", "apple"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.Equal(t, 1, e.CallCount())
}

func TestMockEmbedder_InjectedBehavior(t *testing.T) {
	e := NewMockEmbedder()
	boom := errors.New("boom")
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}

	_, err := e.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)

	e.Reset()
	assert.Equal(t, 0, e.CallCount())
	_, err = e.EmbedTexts(context.Background(), []string{"x"})
	assert.NoError(t, err)
}
