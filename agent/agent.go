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
	"fmt"
	"io"
	"log/slog"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"
)

const defaultMaxIterations = 10

// Agent answers questions with an LLM and optional tools.
type Agent struct {
	name          string
	instructions  string
	llm           llms.Model
	tools         []tools.Tool
	maxIterations int
	stream        io.Writer
	logger        *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent) error

// WithName sets the display name used in logs.
func WithName(name string) Option {
	return func(a *Agent) error {
		a.name = name
		return nil
	}
}

// WithTools adds tools the agent may call.
func WithTools(t ...tools.Tool) Option {
	return func(a *Agent) error {
		for _, tool := range t {
			if tool == nil {
				return ErrToolRequired
			}
		}
		a.tools = append(a.tools, t...)
		return nil
	}
}

// WithMaxIterations caps the plan/act loop of a tool-using agent.
// Default is 10.
func WithMaxIterations(n int) Option {
	return func(a *Agent) error {
		if n < 1 {
			n = 1
		}
		a.maxIterations = n
		return nil
	}
}

// WithStreaming writes the answer to w as it is generated.
// Only agents without tools stream.
func WithStreaming(w io.Writer) Option {
	return func(a *Agent) error {
		a.stream = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates an agent that follows instructions.
func New(llm llms.Model, instructions string, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, ErrModelRequired
	}
	a := &Agent{
		name:          "Nutrition Assistant",
		instructions:  instructions,
		llm:           llm,
		maxIterations: defaultMaxIterations,
		logger:        slog.Default().With("component", "agent"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Name returns the agent's display name.
func (a *Agent) Name() string {
	return a.name
}

// Tools returns the tools the agent may call.
func (a *Agent) Tools() []tools.Tool {
	return a.tools
}

// Run answers input and returns the final output.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	a.logger.Debug("running agent", "agent", a.name, "tools", len(a.tools))
	if len(a.tools) == 0 {
		return a.generate(ctx, input)
	}

	agent := agents.NewOpenAIFunctionsAgent(a.llm, a.tools,
		agents.NewOpenAIOption().WithSystemMessage(a.instructions))
	executor := agents.NewExecutor(agent,
		agents.WithMaxIterations(a.maxIterations),
		agents.WithCallbacksHandler(&logHandler{logger: a.logger, agent: a.name}))

	output, err := chains.Run(ctx, executor, input)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.name, err)
	}
	return output, nil
}

func (a *Agent) generate(ctx context.Context, input string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, a.instructions),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	var opts []llms.CallOption
	if a.stream != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			_, err := a.stream.Write(chunk)
			return err
		}))
	}

	resp, err := a.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", a.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}

// logHandler logs the executor's tool calls.
type logHandler struct {
	callbacks.SimpleHandler
	logger *slog.Logger
	agent  string
}

var _ callbacks.Handler = (*logHandler)(nil)

func (h *logHandler) HandleAgentAction(_ context.Context, action schema.AgentAction) {
	h.logger.Info("tool call", "agent", h.agent, "tool", action.Tool, "input", action.ToolInput)
}

func (h *logHandler) HandleAgentFinish(_ context.Context, _ schema.AgentFinish) {
	h.logger.Debug("agent finished", "agent", h.agent)
}
