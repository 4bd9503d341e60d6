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
	"fmt"
	"strings"

	"github.com/poiesic/nutrirag/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Headers prepended to non-empty results when a tool is built WithHeader.
const (
	CalorieHeader = "Nutrition Information:\n"
	QAHeader      = "Related answers to your question:\n"
)

// Formatter renders the hits of one lookup. It is only called with at least
// one result.
type Formatter func(results []core.QueryResult) string

// FormatCalorieLine renders "<Food> (<Category>): <calories> calories per 100g"
// from calorie metadata, title-casing the lower-cased stored names.
func FormatCalorieLine(m core.Metadata) string {
	title := cases.Title(language.Und)
	return fmt.Sprintf("%s (%s): %s calories per 100g",
		title.String(core.FoodItem.Get(m)),
		title.String(core.FoodCategory.Get(m)),
		core.FormatNumber(core.CaloriesPer100g.Get(m)))
}

// FormatCalories renders one line per result, in result order.
func FormatCalories(results []core.QueryResult) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = FormatCalorieLine(r.Document.Metadata)
	}
	return strings.Join(lines, "\n")
}

// FormatDocuments joins the stored document texts with newlines.
func FormatDocuments(results []core.QueryResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Document.Text
	}
	return strings.Join(texts, "\n")
}

// NoNutritionInfo is the calorie tool's answer when nothing matches.
func NoNutritionInfo(query string) string {
	return "No nutrition information found for: " + query
}

// NoInformation is the Q&A tool's answer when nothing matches.
func NoInformation(query string) string {
	return "No information found for: " + query
}
