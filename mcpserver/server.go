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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/poiesic/nutrirag/retrieval"
)

// Version is the MCP server version.
const Version = "1.0.0"

const instructions = "Nutrition lookups backed by a local vector database. " +
	"Use calorie_lookup_tool for calories of single food items and " +
	"nutrition_qna_tool for general nutrition questions."

// Server is the MCP server for the nutrition tools.
type Server struct {
	calories *retrieval.Tool
	qa       *retrieval.Tool
	server   *mcp.Server
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithCalorieTool registers the calorie lookup tool.
func WithCalorieTool(t *retrieval.Tool) Option {
	return func(s *Server) error {
		s.calories = t
		return nil
	}
}

// WithQATool registers the nutrition Q&A tool.
func WithQATool(t *retrieval.Tool) Option {
	return func(s *Server) error {
		s.qa = t
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates an MCP server for the configured tools.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		logger: slog.Default().With("component", "mcpserver"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.calories == nil && s.qa == nil {
		return nil, ErrNoTools
	}

	impl := &mcp.Implementation{
		Name:    "nutrirag",
		Version: Version,
	}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: instructions,
		Logger:       s.logger,
	})

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over the given transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// Handler returns an http.Handler serving the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP starts the MCP server over HTTP on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	s.logger.Info("serving MCP over HTTP", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
