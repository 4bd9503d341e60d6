package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/nutrirag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qaFile(valid, malformed int) string {
	var b strings.Builder
	for i := range valid {
		fmt.Fprintf(&b, "Question: What is nutrient %d?\nAnswer: Nutrient %d is essential.\n\n", i, i)
	}
	for i := range malformed {
		fmt.Fprintf(&b, "Question: Orphan question %d?\n\n", i)
	}
	return b.String()
}

func TestParseQA(t *testing.T) {
	input := "Question: What is protein?\nAnswer: A macronutrient.\n\n" +
		"\n\n\n" +
		"Question: No answer here?\n\n" +
		"Answer: No question here.\n\n" +
		"Some preamble\nQuestion:   Why eat fiber?  \nAnswer: Digestion.\r\n\r\n" +
		"Question:\nAnswer: Empty question.\n"

	pairs, dropped, err := ParseQA(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []QAPair{
		{Question: "What is protein?", Answer: "A macronutrient."},
		{Question: "Why eat fiber?", Answer: "Digestion."},
	}, pairs)
	assert.Equal(t, 3, dropped)
}

func TestParseQA_Empty(t *testing.T) {
	pairs, dropped, err := ParseQA(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Zero(t, dropped)
}

func TestSampleSize(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{100, 0.05, 5},
		{10, 0.05, 1},
		{1, 0.5, 1},
		{0, 0.5, 0},
		{7, 1, 7},
		{99, 0.1, 9},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d*%v", tt.n, tt.fraction), func(t *testing.T) {
			assert.Equal(t, tt.want, SampleSize(tt.n, tt.fraction))
		})
	}
}

func TestSample_InvalidFraction(t *testing.T) {
	pairs := []QAPair{{Question: "q", Answer: "a"}}
	for _, f := range []float64{0, -0.1, 1.5} {
		_, err := Sample(pairs, f, DefaultSeed)
		assert.ErrorIs(t, err, ErrInvalidFraction, "fraction %v", f)
	}
}

func TestSample_Reproducible(t *testing.T) {
	pairs, _, err := ParseQA(strings.NewReader(qaFile(50, 0)))
	require.NoError(t, err)

	a, err := Sample(pairs, 0.2, DefaultSeed)
	require.NoError(t, err)
	b, err := Sample(pairs, 0.2, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)

	// Sampled pairs keep source order and are distinct.
	index := map[QAPair]int{}
	for i, p := range pairs {
		index[p] = i
	}
	for i := 1; i < len(a); i++ {
		assert.Less(t, index[a[i-1]], index[a[i]])
	}
}

func TestSample_Whole(t *testing.T) {
	pairs, _, err := ParseQA(strings.NewReader(qaFile(5, 0)))
	require.NoError(t, err)

	sample, err := Sample(pairs, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, pairs, sample)
}

func TestSample_EmptyPopulation(t *testing.T) {
	sample, err := Sample(nil, 0.5, DefaultSeed)
	require.NoError(t, err)
	assert.Empty(t, sample)
}

func TestBuildQADocument(t *testing.T) {
	doc := BuildQADocument(2, QAPair{Question: "What is protein?", Answer: "Protein builds muscle."})

	assert.Equal(t, "qa_2", doc.ID)
	assert.Equal(t, "Question: What is protein?\nAnswer: Protein builds muscle.\n\n"+
		"This Q&A pair provides information about nutrition and health topics.", doc.Text)
	assert.Equal(t, core.Metadata{
		"question":          "What is protein?",
		"answer":            "Protein builds muscle.",
		"question_length":   16,
		"answer_length":     22,
		"keywords":          "builds is muscle protein what",
		"has_question_mark": true,
		"topic":             "nutrition_qa",
	}, doc.Metadata)
}

func TestBuildQADocument_NoQuestionMark(t *testing.T) {
	doc := BuildQADocument(0, QAPair{Question: "Define calorie", Answer: "A unit of energy."})
	assert.False(t, core.HasQuestionMark.Get(doc.Metadata))
	assert.Equal(t, "a calorie define energy of unit", core.Keywords.Get(doc.Metadata))
}

func TestPrepareQADocuments_SampleFromValidOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions_output.txt")
	require.NoError(t, os.WriteFile(path, []byte(qaFile(100, 5)), 0o644))

	docs, stats, err := PrepareQADocuments(path, 0.05, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, SampleStats{Valid: 100, Dropped: 5, Sampled: 5}, stats)
	require.Len(t, docs, 5)
	for i, doc := range docs {
		assert.Equal(t, QAID(i), doc.ID)
		assert.NotContains(t, doc.Text, "Orphan")
		assert.NotEmpty(t, core.Answer.Get(doc.Metadata))
	}
}

func TestPrepareQADocuments_MissingFile(t *testing.T) {
	_, _, err := PrepareQADocuments(filepath.Join(t.TempDir(), "missing.txt"), 0.05, DefaultSeed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrepareFoodDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calories.csv")
	require.NoError(t, os.WriteFile(path, []byte(foodCSV), 0o644))

	docs, err := PrepareFoodDocuments(path)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}
