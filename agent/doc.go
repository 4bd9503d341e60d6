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


// Package agent builds the nutrition assistants: an LLM, a system
// instruction and the tools it may call.
//
// An Agent without tools answers with a single generation and can stream it.
// An Agent with tools runs langchaingo's OpenAI functions agent in an
// executor that stops after a fixed number of iterations.
package agent
