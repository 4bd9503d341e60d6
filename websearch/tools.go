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


package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tmc/langchaingo/tools"
)

// remoteTool adapts one MCP tool to the langchaingo tools.Tool interface.
type remoteTool struct {
	client *Client
	tool   *mcp.Tool
}

var _ tools.Tool = (*remoteTool)(nil)

// AgentTools wraps every server tool for use by an agent.
func (c *Client) AgentTools(ctx context.Context) ([]tools.Tool, error) {
	list, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]tools.Tool, len(list))
	for i, t := range list {
		out[i] = &remoteTool{client: c, tool: t}
	}
	return out, nil
}

// AgentTool wraps the named server tool.
func (c *Client) AgentTool(ctx context.Context, name string) (tools.Tool, error) {
	list, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.Name == name {
			return &remoteTool{client: c, tool: t}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

func (r *remoteTool) Name() string {
	return r.tool.Name
}

// Description appends the input schema so the model can pass a JSON object.
func (r *remoteTool) Description() string {
	desc := r.tool.Description
	if r.tool.InputSchema == nil {
		return desc
	}
	schema, err := json.Marshal(r.tool.InputSchema)
	if err != nil {
		return desc
	}
	return desc + "\nInput is a JSON object matching this schema: " + string(schema)
}

func (r *remoteTool) Call(ctx context.Context, input string) (string, error) {
	return r.client.Call(ctx, r.tool.Name, arguments(r.tool.InputSchema, input))
}

// arguments turns agent input into tool arguments. A JSON object is passed
// through; plain text becomes the value of the schema's first required
// string property, or of "query".
func arguments(schema any, input string) map[string]any {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
			return args
		}
	}
	return map[string]any{textProperty(schema): input}
}

func textProperty(schema any) string {
	const fallback = "query"

	data, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var s struct {
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type any `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fallback
	}
	for _, name := range s.Required {
		if p, ok := s.Properties[name]; ok && p.Type == "string" {
			return name
		}
	}
	return fallback
}
