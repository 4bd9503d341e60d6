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


// Package retrieval answers free-text queries from a vector collection and
// formats the hits as plain text for an agent.
//
// A Tool wraps one collection. The calorie variant prints one line per food
// from the stored metadata; the Q&A variant returns the stored document
// texts. An empty result is a sentinel sentence, never an error, so an agent
// can treat "nothing found" as an ordinary answer. Tools implement the
// langchaingo tools.Tool interface.
package retrieval
