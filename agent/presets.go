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


package agent

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Preset names an assistant configuration.
type Preset string

const (
	// SimpleAssistant gives nutrition advice without tools.
	SimpleAssistant Preset = "simple"
	// ToolCallingAssistant answers calorie questions from a built-in table.
	ToolCallingAssistant Preset = "tool-calling"
	// CalorieAssistant answers calorie questions from the calorie collection.
	CalorieAssistant Preset = "calorie"
	// NutritionAssistant uses the calorie and Q&A collections.
	NutritionAssistant Preset = "nutrition"
	// SearchAssistant combines the calorie collection with web search.
	SearchAssistant Preset = "search"
)

// Presets lists every preset.
var Presets = []Preset{SimpleAssistant, ToolCallingAssistant, CalorieAssistant, NutritionAssistant, SearchAssistant}

// ParsePreset returns the preset named s.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// MaxCalorieLookups bounds the calorie tool calls of the search assistant.
const MaxCalorieLookups = 10

const (
	simpleInstructions = `You are a helpful assistant giving out nutrition advice.
You give concise answers.`

	calorieInstructions = `You are a helpful nutrition assistant giving out calorie information.
You give concise answers.`

	calorieLookupInstructions = calorieInstructions + `
If you need to look up calorie information, use the calorie_lookup_tool.`

	nutritionInstructions = `You are a helpful nutrition assistant giving out calorie information and nutrition advice.
You give concise answers.

If you need to look up calorie information, use the calorie_lookup_tool.
If you are asked a question about nutrition, always use the nutrition_qna_tool first to see if there is an answer in the knowledge base.`

	searchInstructions = `* You are a helpful nutrition assistant giving out calorie information.
* You give concise answers.
* You follow this workflow:
    0) First, use the calorie_lookup_tool to get the calorie information of the ingredients. But only use the result if it's explicitly for the food requested in the query.
    1) If you couldn't find the exact match for the food or you need to look up the ingredients, search the web to figure out the exact ingredients of the meal.
    Even if you have the calories in the web search response, you should still use the calorie_lookup_tool to get the calorie
    information of the ingredients to make sure the information you provide is consistent.
    2) Then, if necessary, use the calorie_lookup_tool to get the calorie information of the ingredients.
* Even if you know the recipe of the meal, always use web search to find the exact recipe and ingredients.
* Once you know the ingredients, use the calorie_lookup_tool to get the calorie information of the individual ingredients.
* If the query is about the meal, in your final output give a list of ingredients with their quantities and calories for a single serving. Also display the total calories.
* Don't use the calorie_lookup_tool more than 10 times.`
)

// DefaultQuestions are the sample questions asked by each preset when the
// caller supplies none.
var DefaultQuestions = map[Preset][]string{
	SimpleAssistant:      {"How healthy are bananas?"},
	ToolCallingAssistant: {"How many calories are in total in a banana and an apple?"},
	CalorieAssistant:     {"How many calories are in total in a banana and an apple?"},
	NutritionAssistant:   {"What are the best meal choices for pregnant women and how many calories do they have?"},
	SearchAssistant: {
		"How many calories are in total in a banana and an apple? Also give calories per 100g",
		"How many calories are in an english breakfast?",
	},
}

// Tools holds the tools a preset may need. Presets ignore tools they do not use.
type Tools struct {
	Calories tools.Tool   // calorie_lookup_tool
	QA       tools.Tool   // nutrition_qna_tool
	Search   []tools.Tool // web search tools
}

// NewSimpleAssistant creates the tool-less advice assistant.
func NewSimpleAssistant(llm llms.Model, opts ...Option) (*Agent, error) {
	return New(llm, simpleInstructions, opts...)
}

// NewToolCallingAssistant creates an assistant with the built-in calorie table.
func NewToolCallingAssistant(llm llms.Model, opts ...Option) (*Agent, error) {
	return New(llm, calorieInstructions, append([]Option{WithTools(NewFoodCaloriesTool())}, opts...)...)
}

// NewCalorieAssistant creates an assistant that looks calories up in the
// calorie collection.
func NewCalorieAssistant(llm llms.Model, calories tools.Tool, opts ...Option) (*Agent, error) {
	if calories == nil {
		return nil, fmt.Errorf("%w: calorie lookup", ErrToolRequired)
	}
	return New(llm, calorieLookupInstructions, append([]Option{WithTools(calories)}, opts...)...)
}

// NewNutritionAssistant creates an assistant using the calorie and Q&A collections.
func NewNutritionAssistant(llm llms.Model, calories, qa tools.Tool, opts ...Option) (*Agent, error) {
	if calories == nil {
		return nil, fmt.Errorf("%w: calorie lookup", ErrToolRequired)
	}
	if qa == nil {
		return nil, fmt.Errorf("%w: nutrition Q&A", ErrToolRequired)
	}
	return New(llm, nutritionInstructions, append([]Option{WithTools(calories, qa)}, opts...)...)
}

// NewSearchAssistant creates an assistant that researches meals on the web
// and prices their ingredients with the calorie collection. The calorie tool
// stops answering after MaxCalorieLookups calls.
func NewSearchAssistant(llm llms.Model, calories tools.Tool, search []tools.Tool, opts ...Option) (*Agent, error) {
	if calories == nil {
		return nil, fmt.Errorf("%w: calorie lookup", ErrToolRequired)
	}
	if len(search) == 0 {
		return nil, fmt.Errorf("%w: web search", ErrToolRequired)
	}
	all := append([]tools.Tool{LimitCalls(calories, MaxCalorieLookups)}, search...)
	return New(llm, searchInstructions, append([]Option{WithTools(all...)}, opts...)...)
}

// NewPreset builds the named preset from the supplied tools.
func NewPreset(p Preset, llm llms.Model, t Tools, opts ...Option) (*Agent, error) {
	switch p {
	case SimpleAssistant:
		return NewSimpleAssistant(llm, opts...)
	case ToolCallingAssistant:
		return NewToolCallingAssistant(llm, opts...)
	case CalorieAssistant:
		return NewCalorieAssistant(llm, t.Calories, opts...)
	case NutritionAssistant:
		return NewNutritionAssistant(llm, t.Calories, t.QA, opts...)
	case SearchAssistant:
		return NewSearchAssistant(llm, t.Calories, t.Search, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, p)
	}
}

// NeedsCollections reports whether the preset reads the vector store.
func (p Preset) NeedsCollections() bool {
	return p == CalorieAssistant || p == NutritionAssistant || p == SearchAssistant
}

// NeedsSearch reports whether the preset calls web search.
func (p Preset) NeedsSearch() bool {
	return p == SearchAssistant
}
