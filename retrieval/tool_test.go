package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/nutrirag/ai/mock"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/ingestion"
	"github.com/poiesic/nutrirag/storage"
	"github.com/poiesic/nutrirag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	apple    = ingestion.FoodRecord{Category: "Fruit", Item: "Apple", Serving: "1 medium", Calories: "52 cal", KJ: "218 kJ"}
	banana   = ingestion.FoodRecord{Category: "Fruit", Item: "Banana", Serving: "1 medium", Calories: "105 cal", KJ: "440 kJ"}
	broccoli = ingestion.FoodRecord{Category: "Vegetables", Item: "Broccoli", Serving: "1 cup", Calories: "34 cal", KJ: "142 kJ"}
)

func newCollection(t *testing.T, name string, docs []*core.Document, opts ...badger.Option) storage.Collection {
	t.Helper()
	store, backend, err := badger.NewMemoryStore(mock.NewMockEmbedder(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})

	c, err := store.CreateCollection(context.Background(), name, nil)
	require.NoError(t, err)
	if len(docs) > 0 {
		require.NoError(t, c.Add(context.Background(), docs...))
	}
	return c
}

func foodCollection(t *testing.T, records ...ingestion.FoodRecord) storage.Collection {
	t.Helper()
	docs, err := ingestion.BuildFoodDocuments(records)
	require.NoError(t, err)
	return newCollection(t, ingestion.FoodCollection, docs)
}

func TestNewTool_RequiresCollection(t *testing.T) {
	_, err := NewCalorieTool(nil)
	assert.ErrorIs(t, err, ErrCollectionRequired)
	_, err = NewQATool(nil)
	assert.ErrorIs(t, err, ErrCollectionRequired)
}

func TestCalorieTool_Banana(t *testing.T) {
	tool, err := NewCalorieTool(foodCollection(t, banana))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "banana", 3)
	require.NoError(t, err)
	assert.Equal(t, "Banana (Fruit): 105.0 calories per 100g", out)
}

func TestCalorieTool_RelevanceOrder(t *testing.T) {
	tool, err := NewCalorieTool(foodCollection(t, apple, banana, broccoli))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "banana", 0)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, DefaultMaxResults)
	assert.Equal(t, "Banana (Fruit): 105.0 calories per 100g", lines[0])
	assert.ElementsMatch(t, []string{
		"Banana (Fruit): 105.0 calories per 100g",
		"Apple (Fruit): 52.0 calories per 100g",
		"Broccoli (Vegetables): 34.0 calories per 100g",
	}, lines)

	out, err = tool.Lookup(context.Background(), "banana", 1)
	require.NoError(t, err)
	assert.Equal(t, "Banana (Fruit): 105.0 calories per 100g", out)
}

func TestCalorieTool_EmptyCollection(t *testing.T) {
	tool, err := NewCalorieTool(newCollection(t, ingestion.FoodCollection, nil))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "banana", 3)
	require.NoError(t, err)
	assert.Equal(t, "No nutrition information found for: banana", out)
}

func TestCalorieTool_ZeroMatches(t *testing.T) {
	docs, err := ingestion.BuildFoodDocuments([]ingestion.FoodRecord{banana})
	require.NoError(t, err)
	c := newCollection(t, ingestion.FoodCollection, docs, badger.WithMinSimilarity(0.01))

	tool, err := NewCalorieTool(c)
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "quinoa", 3)
	require.NoError(t, err)
	assert.Equal(t, "No nutrition information found for: quinoa", out)
}

func TestCalorieTool_Header(t *testing.T) {
	tool, err := NewCalorieTool(foodCollection(t, banana), WithHeader(CalorieHeader))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "banana", 3)
	require.NoError(t, err)
	assert.Equal(t, "Nutrition Information:\nBanana (Fruit): 105.0 calories per 100g", out)

	// The sentinel never carries the header.
	empty, err := NewCalorieTool(newCollection(t, "empty", nil), WithHeader(CalorieHeader))
	require.NoError(t, err)
	out, err = empty.Lookup(context.Background(), "banana", 3)
	require.NoError(t, err)
	assert.Equal(t, "No nutrition information found for: banana", out)
}

func TestQATool(t *testing.T) {
	docs, err := ingestion.BuildQADocuments([]ingestion.QAPair{
		{Question: "What should pregnant women eat?", Answer: "Folate rich foods."},
		{Question: "Is fiber important?", Answer: "Yes, for digestion."},
	})
	require.NoError(t, err)

	tool, err := NewQATool(newCollection(t, ingestion.QACollection, docs))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "pregnant", 2)
	require.NoError(t, err)
	assert.Equal(t, docs[0].Text+"\n"+docs[1].Text, out)
}

func TestQATool_EmptyCollection(t *testing.T) {
	tool, err := NewQATool(newCollection(t, ingestion.QACollection, nil), WithHeader(QAHeader))
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "pregnancy", 3)
	require.NoError(t, err)
	assert.Equal(t, "No information found for: pregnancy", out)
}

func TestTool_EmptyQueryPassesThrough(t *testing.T) {
	c := &stubCollection{}
	tool, err := NewCalorieTool(c)
	require.NoError(t, err)

	out, err := tool.Lookup(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Equal(t, "   ", c.query)
	assert.Equal(t, 3, c.n)
	assert.Equal(t, "No nutrition information found for:    ", out)
}

func TestTool_BackendErrorPropagates(t *testing.T) {
	unavailable := errors.New("store unavailable")
	tool, err := NewQATool(&stubCollection{err: unavailable})
	require.NoError(t, err)

	_, err = tool.Lookup(context.Background(), "protein", 3)
	assert.Same(t, unavailable, err)
}

func TestTool_Call(t *testing.T) {
	c := &stubCollection{}
	tool, err := NewCalorieTool(c, WithDefaultMaxResults(5))
	require.NoError(t, err)
	assert.Equal(t, CalorieToolName, tool.Name())
	assert.Contains(t, tool.Description(), calorieDescription)
	assert.Contains(t, tool.Description(), `"max_results"`)

	_, err = tool.Call(context.Background(), `{"query": "apple", "max_results": 2}`)
	require.NoError(t, err)
	assert.Equal(t, "apple", c.query)
	assert.Equal(t, 2, c.n)

	_, err = tool.Call(context.Background(), "banana bread")
	require.NoError(t, err)
	assert.Equal(t, "banana bread", c.query)
	assert.Equal(t, 5, c.n)
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		raw  string
		want Input
	}{
		{`{"query":"apple"}`, Input{Query: "apple"}},
		{` {"query":"apple","max_results":4} `, Input{Query: "apple", MaxResults: 4}},
		{"apple", Input{Query: "apple"}},
		{"{not json", Input{Query: "{not json"}},
		{"", Input{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInput(tt.raw))
		})
	}
}

type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(tool, query string, n int)      { m.stages = append(m.stages, "start:"+tool) }
func (m *recordingMonitor) AfterQuery(results []core.QueryResult) { m.stages = append(m.stages, "query") }
func (m *recordingMonitor) Finish(output string)                  { m.stages = append(m.stages, "finish") }

func TestTool_Monitor(t *testing.T) {
	tool, err := NewCalorieTool(foodCollection(t, banana))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = tool.LookupWithMonitor(context.Background(), "banana", 3, monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start:calorie_lookup_tool", "query", "finish"}, monitor.stages)
}

func TestFormatCalorieLine(t *testing.T) {
	m := core.Metadata{}
	core.FoodItem.Set(m, "Pepperoni Pizza")
	core.FoodCategory.Set(m, "pizza")
	core.CaloriesPer100g.Set(m, 272.5)
	assert.Equal(t, "Pepperoni Pizza (Pizza): 272.5 calories per 100g", FormatCalorieLine(m))

	// Missing numeric fields read as zero.
	assert.Equal(t, " (): 0.0 calories per 100g", FormatCalorieLine(core.Metadata{}))
}

// stubCollection records the last query and returns no hits or err.
type stubCollection struct {
	query string
	n     int
	err   error
}

func (s *stubCollection) Name() string            { return "stub" }
func (s *stubCollection) Metadata() core.Metadata { return nil }
func (s *stubCollection) Add(context.Context, ...*core.Document) error {
	return nil
}
func (s *stubCollection) Upsert(context.Context, ...*core.Document) error {
	return nil
}
func (s *stubCollection) Get(context.Context, string) (*core.Document, error) {
	return nil, storage.ErrNotFound
}
func (s *stubCollection) Count(context.Context) (int, error) { return 0, nil }
func (s *stubCollection) Query(_ context.Context, text string, n int) ([]core.QueryResult, error) {
	s.query, s.n = text, n
	return nil, s.err
}
