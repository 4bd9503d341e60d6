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


// Package nutrirag builds searchable nutrition knowledge bases for LLM agents.
//
// A Database holds two vector collections: nutrition_db, one document per
// food row of a calorie CSV, and nutrition_qna, a seeded sample of a
// question and answer corpus. The retrieval tools query those collections
// and render plain-text context for agents, the MCP server and the HTTP API.
//
//	db, err := nutrirag.Open(ctx, cfg)
//	if err != nil { ... }
//	defer db.Close()
//
//	if _, err := db.SetupCalories(ctx, "data/calories.csv"); err != nil { ... }
//	tool, err := db.CalorieTool(ctx)
//	answer, err := tool.Lookup(ctx, "banana", 3)
package nutrirag
