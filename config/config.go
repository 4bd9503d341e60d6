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


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/nutrirag/ai"
)

// Storage backends.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// DefaultEnvFile is read when no .env path is given. A missing default file is not an error.
const DefaultEnvFile = ".env"

// Environment variables read by Load.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvOpenAIModel    = "OPENAI_DEFAULT_MODEL"
	EnvOpenAIBaseURL  = "OPENAI_BASE_URL"
	EnvExaKey         = "EXA_API_KEY"
	EnvEmbeddingModel = "NUTRIRAG_EMBEDDING_MODEL"
	EnvDataDir        = "NUTRIRAG_DATA_DIR"
	EnvBackend        = "NUTRIRAG_BACKEND"
	EnvPostgresDSN    = "NUTRIRAG_PG_DSN"
	EnvLogLevel       = "NUTRIRAG_LOG_LEVEL"
	EnvHTTPAddr       = "NUTRIRAG_HTTP_ADDR"
	EnvSampleFraction = "NUTRIRAG_SAMPLE_FRACTION"
	EnvSeed           = "NUTRIRAG_SEED"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string `toml:"log_level" validate:"oneof=debug info warn error"`

	Storage StorageConfig `toml:"storage"`
	OpenAI  OpenAIConfig  `toml:"openai"`
	Exa     ExaConfig     `toml:"exa"`
	Ingest  IngestConfig  `toml:"ingest"`
	Server  ServerConfig  `toml:"server"`
}

// StorageConfig selects and locates the vector store.
type StorageConfig struct {
	Backend     string `toml:"backend" validate:"oneof=badger postgres"`
	DataDir     string `toml:"data_dir" validate:"required_if=Backend badger"`
	PostgresDSN string `toml:"postgres_dsn" validate:"required_if=Backend postgres"`
}

// OpenAIConfig configures the OpenAI-compatible chat and embedding endpoints.
type OpenAIConfig struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url" validate:"required,url"`
	ChatModel          string `toml:"chat_model" validate:"required"`
	EmbeddingModel     string `toml:"embedding_model" validate:"required"`
	EmbeddingBatchSize int    `toml:"embedding_batch_size" validate:"gte=0"`
	MaxAttempts        int    `toml:"max_attempts" validate:"gte=1"`
	RetryDelayMS       int    `toml:"retry_delay_ms" validate:"gte=0"`
}

// ExaConfig configures the web search MCP server.
type ExaConfig struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint" validate:"omitempty,url"`
}

// IngestConfig holds source paths and sampling parameters.
type IngestConfig struct {
	FoodCSV        string  `toml:"food_csv"`
	QAText         string  `toml:"qa_text"`
	SampleFraction float64 `toml:"sample_fraction" validate:"gt=0,lte=1"`
	Seed           uint64  `toml:"seed"`
	BatchSize      int     `toml:"batch_size" validate:"gte=0"`
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	HTTPAddr string `toml:"http_addr"`
	MCPAddr  string `toml:"mcp_addr"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Backend: BackendBadger,
			DataDir: "chroma",
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			MaxAttempts:    3,
			RetryDelayMS:   500,
		},
		Ingest: IngestConfig{
			FoodCSV:        "data/calories.csv",
			QAText:         "data/questions_output.txt",
			SampleFraction: 0.05,
			Seed:           42,
		},
		Server: ServerConfig{
			HTTPAddr: ":8080",
			MCPAddr:  ":8090",
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// empty), the .env files and the environment. Without envFiles the default
// .env is read if it exists.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		err := godotenv.Overload(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Overload(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.OpenAI.APIKey, EnvOpenAIKey)
	setString(&c.OpenAI.ChatModel, EnvOpenAIModel)
	setString(&c.OpenAI.BaseURL, EnvOpenAIBaseURL)
	setString(&c.OpenAI.EmbeddingModel, EnvEmbeddingModel)
	setString(&c.Exa.APIKey, EnvExaKey)
	setString(&c.Storage.DataDir, EnvDataDir)
	setString(&c.Storage.Backend, EnvBackend)
	setString(&c.Storage.PostgresDSN, EnvPostgresDSN)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.Server.HTTPAddr, EnvHTTPAddr)

	if v := os.Getenv(EnvSampleFraction); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSampleFraction, v)
		}
		c.Ingest.SampleFraction = f
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSeed, v)
		}
		c.Ingest.Seed = seed
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. It does not require secrets; see
// RequireOpenAI and RequireSearch.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// RequireOpenAI returns ErrMissingAPIKey unless an OpenAI key is set.
func (c *Config) RequireOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RequireSearch returns ErrMissingSearchKey unless an Exa key is set.
func (c *Config) RequireSearch() error {
	if c.Exa.APIKey == "" {
		return ErrMissingSearchKey
	}
	return nil
}

// AI returns the provider configuration for the OpenAI settings.
func (c *Config) AI() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithHost(c.OpenAI.BaseURL),
		ai.WithAPIKey(c.OpenAI.APIKey),
		ai.WithChatModel(c.OpenAI.ChatModel),
		ai.WithEmbeddingModel(c.OpenAI.EmbeddingModel),
	}
	if c.OpenAI.EmbeddingBatchSize > 0 {
		opts = append(opts, ai.WithEmbeddingBatchSize(c.OpenAI.EmbeddingBatchSize))
	}
	cfg := ai.NewConfig(opts...)
	cfg.Normalize()
	return cfg
}
