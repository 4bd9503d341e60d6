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

import "errors"

var (
	// ErrMissingAPIKey is returned when a command needs the OpenAI API but no key is set.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

	// ErrMissingSearchKey is returned when web search is requested without an Exa key.
	ErrMissingSearchKey = errors.New("EXA_API_KEY is not set")

	// ErrInvalidConfig wraps validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)
