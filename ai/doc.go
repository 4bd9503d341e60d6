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


// Package ai provides abstractions for the AI services nutrirag depends on:
// text embeddings for the vector collections and a chat model for agents.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible implementation built on langchaingo
//   - ai/mock: Test doubles that work without external services
//
// Public constructors in ai/openai return interface types. Test constructors
// in ai/mock return concrete types so tests can inject behavior and inspect
// call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "banana")
package ai
