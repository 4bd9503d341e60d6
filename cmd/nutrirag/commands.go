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


package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/nutrirag"
	"github.com/poiesic/nutrirag/config"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/httpapi"
	"github.com/poiesic/nutrirag/ingestion"
	"github.com/poiesic/nutrirag/internal/cliapp"
	"github.com/poiesic/nutrirag/mcpserver"
	"github.com/poiesic/nutrirag/retrieval"
	"github.com/poiesic/nutrirag/storage"
	"github.com/urfave/cli/v2"
)

func loaderOptions(c *cli.Context, cfg *config.Config) ([]ingestion.LoaderOption, error) {
	batchSize := cfg.Ingest.BatchSize
	if c.IsSet("batch-size") {
		batchSize = c.Int("batch-size")
	}
	opts := []ingestion.LoaderOption{
		ingestion.WithBatchSize(batchSize),
		ingestion.WithProgress(c.App.ErrWriter),
	}
	if c.Bool("tokens") {
		counter, err := ingestion.NewTokenCounter(c.String("token-model"))
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer: %w", err)
		}
		opts = append(opts, ingestion.WithTokenCounter(counter))
	}
	return opts, nil
}

func printLoadResult(w io.Writer, result *ingestion.LoadResult) {
	fmt.Fprintf(w, "Added %d documents to collection '%s' (run %s)\n",
		result.Added, result.Collection.Name(), result.RunID)
	if t := result.Tokens; t != nil {
		fmt.Fprintf(w, "Tokens: %d total, %.1f mean, %d max (%s)\n", t.Total, t.Mean(), t.Max, t.MaxID)
	}
}

func setupCaloriesCommand(c *cli.Context) error {
	cfg, err := cliapp.Config(c)
	if err != nil {
		return err
	}
	path := cfg.Ingest.FoodCSV
	if c.IsSet("csv") {
		path = c.String("csv")
	}
	opts, err := loaderOptions(c, cfg)
	if err != nil {
		return err
	}

	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(c.App.ErrWriter, "Loading %s into %s\n", path, ingestion.FoodCollection)
	result, err := db.SetupCalories(c.Context, path, opts...)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	printLoadResult(c.App.Writer, result)
	return nil
}

func setupQACommand(c *cli.Context) error {
	cfg, err := cliapp.Config(c)
	if err != nil {
		return err
	}
	path := cfg.Ingest.QAText
	if c.IsSet("file") {
		path = c.String("file")
	}
	fraction := cfg.Ingest.SampleFraction
	if c.IsSet("fraction") {
		fraction = c.Float64("fraction")
	}
	seed := cfg.Ingest.Seed
	if c.IsSet("seed") {
		seed = c.Uint64("seed")
	}
	opts, err := loaderOptions(c, cfg)
	if err != nil {
		return err
	}

	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(c.App.ErrWriter, "Loading %s into %s\n", path, ingestion.QACollection)
	result, stats, err := db.SetupQA(c.Context, path, fraction, seed, opts...)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Parsed %d Q&A pairs (%d incomplete dropped), sampled %d at %.1f%%\n",
		stats.Valid, stats.Dropped, stats.Sampled, fraction*100)
	printLoadResult(c.App.Writer, result)
	return nil
}

func queryCaloriesCommand(c *cli.Context) error {
	return runQuery(c, ingestion.FoodCollection)
}

func queryQACommand(c *cli.Context) error {
	return runQuery(c, ingestion.QACollection)
}

func runQuery(c *cli.Context, collection string) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var tool *retrieval.Tool
	if collection == ingestion.FoodCollection {
		tool, err = db.CalorieTool(c.Context)
	} else {
		tool, err = db.QATool(c.Context)
	}
	if err != nil {
		return err
	}

	var monitor retrieval.Monitor
	if c.Bool("verbose") {
		monitor = &printMonitor{w: c.App.ErrWriter}
	}
	out, err := tool.LookupWithMonitor(c.Context, query, c.Int("max-results"), monitor)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

// printMonitor writes each stage of a lookup.
type printMonitor struct {
	w io.Writer
}

func (m *printMonitor) Start(tool, query string, maxResults int) {
	fmt.Fprintf(m.w, "=== %s: %q (top %d) ===\n", tool, query, maxResults)
}

func (m *printMonitor) AfterQuery(results []core.QueryResult) {
	for i, r := range results {
		fmt.Fprintf(m.w, "Result %d [%s] similarity %.3f\n", i+1, r.Document.ID, r.Score)
	}
}

func (m *printMonitor) Finish(_ string) {
	fmt.Fprintln(m.w, strings.Repeat("=", 50))
}

func collectionsCommand(c *cli.Context) error {
	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	infos, err := db.Store().ListCollections(c.Context)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(c.App.Writer, "No collections")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\n", info.Name, info.Count, core.Description.Get(info.Metadata))
	}
	return nil
}

// openTools opens the lookup tools for whichever collections exist, with the
// headers agents expect.
func openTools(c *cli.Context, db *nutrirag.Database) (*retrieval.Tool, *retrieval.Tool, error) {
	calories, err := db.CalorieTool(c.Context, retrieval.WithHeader(retrieval.CalorieHeader))
	if err != nil && !errors.Is(err, storage.ErrCollectionNotFound) {
		return nil, nil, err
	}
	qa, err := db.QATool(c.Context, retrieval.WithHeader(retrieval.QAHeader))
	if err != nil && !errors.Is(err, storage.ErrCollectionNotFound) {
		return nil, nil, err
	}
	if calories == nil && qa == nil {
		return nil, nil, fmt.Errorf("no collections found; run setup-calories or setup-qa first")
	}
	return calories, qa, nil
}

func serveMCPCommand(c *cli.Context) error {
	cfg, err := cliapp.Config(c)
	if err != nil {
		return err
	}
	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	calories, qa, err := openTools(c, db)
	if err != nil {
		return err
	}
	server, err := mcpserver.NewServer(mcpserver.WithCalorieTool(calories), mcpserver.WithQATool(qa))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("http") {
		addr := cfg.Server.MCPAddr
		if c.IsSet("addr") {
			addr = c.String("addr")
		}
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

func serveHTTPCommand(c *cli.Context) error {
	cfg, err := cliapp.Config(c)
	if err != nil {
		return err
	}
	addr := cfg.Server.HTTPAddr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	db, err := cliapp.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	calories, qa, err := openTools(c, db)
	if err != nil {
		return err
	}
	server, err := httpapi.NewServer(db.Store(), httpapi.WithTool(calories), httpapi.WithTool(qa))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Listen(ctx, addr)
}
