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


package cliapp

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/nutrirag"
	"github.com/poiesic/nutrirag/ai/openai"
	"github.com/poiesic/nutrirag/config"
	"github.com/poiesic/nutrirag/websearch"
	"github.com/tmc/langchaingo/llms"
	"github.com/urfave/cli/v2"
)

// App metadata keys. Tests put a provider-backed database option list or a
// chat model under these keys to run commands without an OpenAI account.
const (
	configKey          = "config"
	DatabaseOptionsKey = "database-options"
	ChatModelKey       = "chat-model"
	SearchOptionsKey   = "search-options"
)

// ErrNoConfig is returned when a command runs without the Before hook.
var ErrNoConfig = errors.New("configuration not loaded")

// GlobalFlags returns the flags every program accepts.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a TOML configuration file",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "Load environment variables from `FILE` (default .env if present)",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the vector database directory",
			Value:   "chroma",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Vector store backend (badger, postgres)",
			Value: config.BackendBadger,
		},
		&cli.StringFlag{
			Name:  "pg-dsn",
			Usage: "Postgres connection string for the postgres backend",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Chat model used by agents",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "OpenAI-compatible API base URL",
		},
	}
}

// Before loads the configuration, applies explicitly set flags on top of it
// and installs the default logger.
func Before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.StringSlice("env-file")...)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogger(cfg.LogLevel); err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	set := func(dst *string, flag string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	set(&cfg.LogLevel, "log-level")
	set(&cfg.Storage.DataDir, "db")
	set(&cfg.Storage.Backend, "backend")
	set(&cfg.Storage.PostgresDSN, "pg-dsn")
	set(&cfg.OpenAI.ChatModel, "model")
	set(&cfg.OpenAI.EmbeddingModel, "embedding-model")
	set(&cfg.OpenAI.BaseURL, "base-url")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

func setupLogger(levelStr string) error {
	level, err := ParseLogLevel(levelStr)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

// Config returns the configuration loaded by Before.
func Config(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		return nil, ErrNoConfig
	}
	return cfg, nil
}

// OpenDatabase opens the configured store. Without injected options an
// OpenAI key is required for embeddings.
func OpenDatabase(c *cli.Context) (*nutrirag.Database, error) {
	cfg, err := Config(c)
	if err != nil {
		return nil, err
	}
	opts, injected := c.App.Metadata[DatabaseOptionsKey].([]nutrirag.DatabaseOption)
	if !injected {
		if err := cfg.RequireOpenAI(); err != nil {
			return nil, err
		}
	}
	db, err := nutrirag.Open(c.Context, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// ChatModel returns the configured chat model. Without an injected model an
// OpenAI key is required.
func ChatModel(c *cli.Context) (llms.Model, error) {
	if llm, ok := c.App.Metadata[ChatModelKey].(llms.Model); ok {
		return llm, nil
	}
	cfg, err := Config(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireOpenAI(); err != nil {
		return nil, err
	}
	return openai.NewChatModel(cfg.AI())
}

// SearchClient connects to the configured web search server. Without
// injected options an Exa key is required.
func SearchClient(c *cli.Context) (*websearch.Client, error) {
	cfg, err := Config(c)
	if err != nil {
		return nil, err
	}
	opts, injected := c.App.Metadata[SearchOptionsKey].([]websearch.Option)
	if !injected {
		if err := cfg.RequireSearch(); err != nil {
			return nil, err
		}
	}
	if cfg.Exa.Endpoint != "" {
		opts = append([]websearch.Option{websearch.WithEndpoint(cfg.Exa.Endpoint)}, opts...)
	}
	return websearch.Connect(c.Context, cfg.Exa.APIKey, opts...)
}
