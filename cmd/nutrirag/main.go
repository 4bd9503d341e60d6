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
	"log"
	"os"

	"github.com/poiesic/nutrirag/internal/cliapp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "nutrirag",
		Usage:    "Build and query the nutrition vector collections",
		Flags:    cliapp.GlobalFlags(),
		Before:   cliapp.Before,
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			{
				Name:   "setup-calories",
				Usage:  "Rebuild the nutrition_db collection from the calorie CSV",
				Action: setupCaloriesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Path to the calorie CSV (default data/calories.csv)",
					},
					batchSizeFlag(),
					tokensFlag(),
					tokenModelFlag(),
				},
			},
			{
				Name:   "setup-qa",
				Usage:  "Rebuild the nutrition_qna collection from a sample of the Q&A file",
				Action: setupQACommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path to the Q&A text file (default data/questions_output.txt)",
					},
					&cli.Float64Flag{
						Name:  "fraction",
						Usage: "Share of valid Q&A records to ingest",
						Value: 0.05,
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Random seed for sampling",
						Value: 42,
					},
					batchSizeFlag(),
					tokensFlag(),
					tokenModelFlag(),
				},
			},
			{
				Name:      "query-calories",
				Usage:     "Look up calories of a food item",
				ArgsUsage: "<food item>",
				Action:    queryCaloriesCommand,
				Flags:     queryFlags(),
			},
			{
				Name:      "query-qa",
				Usage:     "Search the nutrition Q&A collection",
				ArgsUsage: "<question>",
				Action:    queryQACommand,
				Flags:     queryFlags(),
			},
			{
				Name:   "collections",
				Usage:  "List collections with their document counts",
				Action: collectionsCommand,
			},
			{
				Name:   "serve-mcp",
				Usage:  "Serve the lookup tools over MCP",
				Action: serveMCPCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "http",
						Usage: "Serve streamable HTTP instead of stdio",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address for --http (default :8090)",
					},
				},
			},
			{
				Name:   "serve-http",
				Usage:  "Serve the JSON API",
				Action: serveHTTPCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default :8080)",
					},
				},
			},
		},
	}
}

func batchSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "batch-size",
		Usage: "Documents per add request (0 adds everything at once)",
	}
}

func tokensFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "tokens",
		Usage: "Report token counts of the documents",
	}
}

func tokenModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "token-model",
		Usage: "Model whose tokenizer counts tokens",
		Value: "text-embedding-3-small",
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "max-results",
			Aliases: []string{"n"},
			Usage:   "Maximum number of results",
			Value:   3,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print each hit with its similarity",
		},
	}
}
