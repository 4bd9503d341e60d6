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


package httpapi

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/nutrirag/retrieval"
	"github.com/poiesic/nutrirag/storage"
)

// Server is the HTTP front end of a store and its retrieval tools.
type Server struct {
	app    *fiber.App
	store  storage.Store
	tools  map[string]*retrieval.Tool
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithTool exposes a retrieval tool under its name.
func WithTool(t *retrieval.Tool) Option {
	return func(s *Server) error {
		if t != nil {
			s.tools[t.Name()] = t
		}
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

// NewServer creates the fiber app and registers all routes.
func NewServer(store storage.Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &Server{
		store:  store,
		tools:  make(map[string]*retrieval.Tool),
		logger: slog.Default().With("component", "httpapi"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(s.logger),
		DisableStartupMessage: true,
	})

	var (
		collections = &collectionHandler{store: s.store}
		tools       = &toolHandler{tools: s.tools}
		check       = s.app.Group("/check")
		apiv1       = s.app.Group("/api/v1")
	)

	check.Get("/healthy", handleHealthy)
	apiv1.Get("/collections", collections.handleList)
	apiv1.Post("/tools/:name", tools.handleCall)

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error shutting down", "err", err)
		}
	}()

	s.logger.Info("serving HTTP", "addr", addr)
	return s.app.Listen(addr)
}
