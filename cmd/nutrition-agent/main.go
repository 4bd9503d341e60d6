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
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/poiesic/nutrirag/agent"
	"github.com/poiesic/nutrirag/internal/cliapp"
	"github.com/poiesic/nutrirag/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func presetNames() string {
	names := make([]string, len(agent.Presets))
	for i, p := range agent.Presets {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "nutrition-agent",
		Usage:    "Ask nutrition assistants backed by the vector collections",
		Flags:    cliapp.GlobalFlags(),
		Before:   cliapp.Before,
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Ask a question, or the preset's sample questions when none is given",
				ArgsUsage: "[question]",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "agent",
						Aliases: []string{"a"},
						Usage:   "Assistant preset (" + presetNames() + ")",
						Value:   string(agent.NutritionAssistant),
					},
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Stream the answer as it is generated (simple preset only)",
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Maximum reasoning steps of tool-using agents",
						Value: 10,
					},
				},
			},
			{
				Name:   "presets",
				Usage:  "List the assistant presets",
				Action: presetsCommand,
			},
		},
	}
}

func presetsCommand(c *cli.Context) error {
	for _, p := range agent.Presets {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", p, agent.DefaultQuestions[p][0])
	}
	return nil
}

func askCommand(c *cli.Context) error {
	preset, err := agent.ParsePreset(c.String("agent"))
	if err != nil {
		return err
	}
	if c.Bool("stream") && preset != agent.SimpleAssistant {
		return fmt.Errorf("--stream is only supported by the %s preset", agent.SimpleAssistant)
	}

	llm, err := cliapp.ChatModel(c)
	if err != nil {
		return err
	}

	var toolset agent.Tools
	if preset.NeedsCollections() {
		db, err := cliapp.OpenDatabase(c)
		if err != nil {
			return err
		}
		defer db.Close()

		toolset.Calories, err = db.CalorieTool(c.Context, retrieval.WithHeader(retrieval.CalorieHeader))
		if err != nil {
			return fmt.Errorf("calorie collection: %w", err)
		}
		if preset == agent.NutritionAssistant {
			toolset.QA, err = db.QATool(c.Context, retrieval.WithHeader(retrieval.QAHeader))
			if err != nil {
				return fmt.Errorf("nutrition Q&A collection: %w", err)
			}
		}
	}
	if preset.NeedsSearch() {
		client, err := cliapp.SearchClient(c)
		if err != nil {
			return fmt.Errorf("web search: %w", err)
		}
		defer client.Close()

		toolset.Search, err = client.AgentTools(c.Context)
		if err != nil {
			return fmt.Errorf("web search: %w", err)
		}
	}

	opts := []agent.Option{agent.WithMaxIterations(c.Int("max-iterations"))}
	if c.Bool("stream") {
		opts = append(opts, agent.WithStreaming(c.App.Writer))
	}
	assistant, err := agent.NewPreset(preset, llm, toolset, opts...)
	if err != nil {
		return err
	}

	questions := agent.DefaultQuestions[preset]
	if c.Args().Present() {
		questions = []string{strings.Join(c.Args().Slice(), " ")}
	}

	for _, q := range questions {
		if len(questions) > 1 {
			fmt.Fprintf(c.App.Writer, "Answering question: %s\n", q)
		}
		answer, err := assistant.Run(c.Context, q)
		if err != nil {
			return err
		}
		if c.Bool("stream") {
			fmt.Fprintln(c.App.Writer)
			continue
		}
		fmt.Fprintln(c.App.Writer, answer)
	}
	return nil
}
