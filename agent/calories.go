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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/tools"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoodCaloriesToolName is the name of the built-in calorie table tool.
const FoodCaloriesToolName = "get_food_calories"

var calorieTable = map[string]string{
	"apple":    "80 calories per medium apple (182g)",
	"banana":   "105 calories per medium banana (118g)",
	"broccoli": "25 calories per 1 cup chopped (91g)",
	"almonds":  "164 calories per 1oz (28g) or about 23 nuts",
}

// FoodCaloriesTool reports calories per standard serving for a few common foods.
type FoodCaloriesTool struct{}

var _ tools.Tool = FoodCaloriesTool{}

// NewFoodCaloriesTool returns the built-in calorie table tool.
func NewFoodCaloriesTool() FoodCaloriesTool {
	return FoodCaloriesTool{}
}

func (FoodCaloriesTool) Name() string {
	return FoodCaloriesToolName
}

func (FoodCaloriesTool) Description() string {
	return `Get calorie information for common foods to help with nutrition tracking. ` +
		`Input is the name of the food (e.g. "apple", "banana"). Returns calorie information per standard serving.`
}

// Call accepts the food name as plain text or as {"food_item": "..."}.
func (FoodCaloriesTool) Call(_ context.Context, input string) (string, error) {
	return LookupFoodCalories(parseFoodItem(input)), nil
}

// LookupFoodCalories answers from the built-in table.
func LookupFoodCalories(food string) string {
	if info, ok := calorieTable[strings.ToLower(food)]; ok {
		return fmt.Sprintf("%s: %s", cases.Title(language.Und).String(food), info)
	}
	return fmt.Sprintf("I don't have calorie data for %s in my database. Try common foods like apple, banana or rice.", food)
}

func parseFoodItem(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args struct {
			FoodItem string `json:"food_item"`
		}
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args.FoodItem != "" {
			return args.FoodItem
		}
	}
	return input
}

// limitedTool refuses calls after the limit is reached.
type limitedTool struct {
	tools.Tool
	limit int

	mu    sync.Mutex
	calls int
}

// LimitCalls wraps t so that only the first limit calls reach it. Later
// calls return a message telling the agent to stop using the tool.
func LimitCalls(t tools.Tool, limit int) tools.Tool {
	return &limitedTool{Tool: t, limit: limit}
}

func (l *limitedTool) Call(ctx context.Context, input string) (string, error) {
	l.mu.Lock()
	l.calls++
	over := l.calls > l.limit
	l.mu.Unlock()

	if over {
		return fmt.Sprintf("The %s may be used at most %d times. Answer with the information you already have.",
			l.Name(), l.limit), nil
	}
	return l.Tool.Call(ctx, input)
}
