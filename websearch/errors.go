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


package websearch

import "errors"

var (
	// ErrAPIKeyRequired is returned when connecting to Exa without an API key.
	ErrAPIKeyRequired = errors.New("exa API key required")

	// ErrToolNotFound is returned when calling a tool the server does not list.
	ErrToolNotFound = errors.New("search tool not found")

	// ErrToolFailed is returned when the server reports a tool error.
	ErrToolFailed = errors.New("search tool failed")
)
