package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/nutrirag"
	"github.com/poiesic/nutrirag/ai/mock"
	"github.com/poiesic/nutrirag/config"
	"github.com/poiesic/nutrirag/internal/cliapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
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
`

type harness struct {
	dir     string
	envFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		config.EnvOpenAIKey, config.EnvDataDir, config.EnvBackend, config.EnvPostgresDSN,
		config.EnvLogLevel, config.EnvSampleFraction, config.EnvSeed,
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calories.csv"), []byte(caloriesCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "questions.txt"), []byte(questionsText), 0o600))
	return &harness{dir: dir, envFile: envFile}
}

// run executes the app with a mock provider and returns stdout.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	app.Metadata[cliapp.DatabaseOptionsKey] = []nutrirag.DatabaseOption{
		nutrirag.WithProvider(mock.NewMockProvider()),
	}
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := append([]string{"nutrirag", "--env-file", h.envFile, "--db", filepath.Join(h.dir, "chroma")}, args...)
	err := app.Run(full)
	return stdout.String(), err
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func TestSetupAndQueryCalories(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "setup-calories", "--csv", h.path("calories.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Added 3 documents to collection 'nutrition_db'")

	out, err = h.run(t, "query-calories", "-n", "1", "banana")
	require.NoError(t, err)
	assert.Equal(t, "Banana (Fruit): 89.0 calories per 100g\n", out)

	out, err = h.run(t, "collections")
	require.NoError(t, err)
	assert.Contains(t, out, "nutrition_db\t3\tNutrition database with calorie and food information")
}

func TestSetupAndQueryQA(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "setup-qa", "--file", h.path("questions.txt"), "--fraction", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Parsed 2 Q&A pairs (0 incomplete dropped), sampled 2 at 100.0%")
	assert.Contains(t, out, "Added 2 documents to collection 'nutrition_qna'")

	out, err = h.run(t, "query-qa", "--verbose", "-n", "1", "quinoa")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Question: Is quinoa gluten free?"), out)
}

func TestSetupQA_DefaultFraction(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "setup-qa", "--file", h.path("questions.txt"))
	require.NoError(t, err)
	// 5% of 2 rounds down to 0 and is raised to 1.
	assert.Contains(t, out, "sampled 1 at 5.0%")
}

func TestQuery_RequiresArgument(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "query-calories")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestQuery_MissingCollection(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "query-qa", "pregnancy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection not found")
}

func TestCollections_Empty(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "collections")
	require.NoError(t, err)
	assert.Equal(t, "No collections\n", out)
}

func TestMissingAPIKey(t *testing.T) {
	h := newHarness(t)
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"nutrirag", "--env-file", h.envFile, "--db", h.path("chroma"), "collections"})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "--log-level", "loud", "collections")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	find := func(name string) *cli.Command {
		for _, cmd := range app.Commands {
			if cmd.Name == name {
				return cmd
			}
		}
		return nil
	}

	for _, name := range []string{
		"setup-calories", "setup-qa", "query-calories", "query-qa",
		"collections", "serve-mcp", "serve-http",
	} {
		assert.NotNil(t, find(name), name)
	}

	t.Run("seed defaults to 42", func(t *testing.T) {
		var seed *cli.Uint64Flag
		for _, flag := range find("setup-qa").Flags {
			if f, ok := flag.(*cli.Uint64Flag); ok && f.Name == "seed" {
				seed = f
			}
		}
		require.NotNil(t, seed)
		assert.Equal(t, uint64(42), seed.Value)
	})

	t.Run("max-results defaults to 3", func(t *testing.T) {
		var n *cli.IntFlag
		for _, flag := range find("query-calories").Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-results" {
				n = f
			}
		}
		require.NotNil(t, n)
		assert.Equal(t, 3, n.Value)
	})
}
