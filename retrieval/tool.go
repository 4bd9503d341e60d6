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


package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/nutrirag/storage"
	"github.com/tmc/langchaingo/tools"
)

// DefaultMaxResults is used when a lookup asks for zero or fewer results.
const DefaultMaxResults = 3

// Tool names as seen by agents and MCP clients.
const (
	CalorieToolName = "calorie_lookup_tool"
	QAToolName      = "nutrition_qna_tool"
)

const (
	calorieDescription = "Look up calorie information for specific food items, but not for meals. " +
		"Input is the food item to look up. Returns one line per matching food with its calories per 100g."
	qaDescription = "Ask a question about nutrition. " +
		"Input is the question to ask. Returns questions and answers from the knowledge base related to the query."
)

// inputHint documents the argument forms Call accepts.
const inputHint = "\nInput is either the query as plain text or a JSON object " +
	`{"query": "<text>", "max_results": <n>}; max_results defaults to 3.`

// Tool searches one collection and formats the hits as text.
type Tool struct {
	collection storage.Collection
	name       string
	desc       string
	header     string
	maxResults int
	format     Formatter
	empty      func(query string) string
	logger     *slog.Logger
}

var _ tools.Tool = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool) error

// WithHeader prefixes non-empty results with header.
// Default is no header, one line per result.
func WithHeader(header string) Option {
	return func(t *Tool) error {
		t.header = header
		return nil
	}
}

// WithDefaultMaxResults sets the result count used when a lookup asks for
// zero or fewer. Default is 3.
func WithDefaultMaxResults(n int) Option {
	return func(t *Tool) error {
		if n < 1 {
			n = DefaultMaxResults
		}
		t.maxResults = n
		return nil
	}
}

// WithName overrides the tool name.
func WithName(name string) Option {
	return func(t *Tool) error {
		t.name = name
		return nil
	}
}

// WithDescription overrides the tool description.
func WithDescription(desc string) Option {
	return func(t *Tool) error {
		t.desc = desc
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// NewCalorieTool creates the calorie lookup tool over a collection of food documents.
func NewCalorieTool(collection storage.Collection, opts ...Option) (*Tool, error) {
	return newTool(collection, CalorieToolName, calorieDescription, FormatCalories, NoNutritionInfo, opts...)
}

// NewQATool creates the nutrition Q&A tool over a collection of Q&A documents.
func NewQATool(collection storage.Collection, opts ...Option) (*Tool, error) {
	return newTool(collection, QAToolName, qaDescription, FormatDocuments, NoInformation, opts...)
}

func newTool(
	collection storage.Collection,
	name, desc string,
	format Formatter,
	empty func(string) string,
	opts ...Option,
) (*Tool, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	t := &Tool{
		collection: collection,
		name:       name,
		desc:       desc,
		maxResults: DefaultMaxResults,
		format:     format,
		empty:      empty,
		logger:     slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the natural-language description shown to agents,
// followed by the accepted input forms.
func (t *Tool) Description() string {
	return t.desc + inputHint
}

// Lookup queries the collection for up to maxResults documents and formats
// them. The query is passed to the store unchanged. Store errors are
// returned as is.
func (t *Tool) Lookup(ctx context.Context, query string, maxResults int) (string, error) {
	return t.LookupWithMonitor(ctx, query, maxResults, nil)
}

// LookupWithMonitor is Lookup with callbacks at each stage.
func (t *Tool) LookupWithMonitor(ctx context.Context, query string, maxResults int, monitor Monitor) (string, error) {
	if monitor == nil {
		monitor = noopMonitor{}
	}
	if maxResults <= 0 {
		maxResults = t.maxResults
	}
	monitor.Start(t.name, query, maxResults)

	results, err := t.collection.Query(ctx, query, maxResults)
	if err != nil {
		t.logger.Error("error querying collection",
			"collection", t.collection.Name(), "query", query, "err", err)
		return "", err
	}
	monitor.AfterQuery(results)

	var output string
	if len(results) == 0 {
		output = t.empty(query)
	} else {
		output = t.header + t.format(results)
	}
	t.logger.Debug("lookup", "tool", t.name, "query", query, "hits", len(results))

	monitor.Finish(output)
	return output, nil
}

// Input is the argument object of a tool call.
type Input struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// ParseInput reads a tool call argument: either a JSON object with query
// and max_results, or the query as plain text.
func ParseInput(raw string) Input {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var in Input
		if err := json.Unmarshal([]byte(trimmed), &in); err == nil {
			return in
		}
	}
	return Input{Query: raw}
}

// Call implements tools.Tool.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	in := ParseInput(input)
	return t.Lookup(ctx, in.Query, in.MaxResults)
}
