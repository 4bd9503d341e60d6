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


package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/poiesic/nutrirag/retrieval"
)

// LookupInput is the input schema shared by both tools.
type LookupInput struct {
	Query      string `json:"query" jsonschema:"the food item or question to look up"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 3)"`
}

// registerTools registers the configured tool handlers with the MCP server.
func (s *Server) registerTools() {
	if s.calories != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        s.calories.Name(),
			Description: s.calories.Description(),
		}, s.handleCalorieLookup)
	}
	if s.qa != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        s.qa.Name(),
			Description: s.qa.Description(),
		}, s.handleNutritionQA)
	}
}

// handleCalorieLookup handles the calorie lookup tool invocation.
func (s *Server) handleCalorieLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, any, error) {
	return s.lookup(ctx, s.calories, input)
}

// handleNutritionQA handles the nutrition Q&A tool invocation.
func (s *Server) handleNutritionQA(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, any, error) {
	return s.lookup(ctx, s.qa, input)
}

func (s *Server) lookup(ctx context.Context, tool *retrieval.Tool, input LookupInput) (*mcp.CallToolResult, any, error) {
	text, err := tool.Lookup(ctx, input.Query, input.MaxResults)
	if err != nil {
		s.logger.Error("tool call failed", "tool", tool.Name(), "err", err)
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
