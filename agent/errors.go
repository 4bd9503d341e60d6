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


package agent

import "errors"

var (
	// ErrModelRequired is returned when no LLM is provided.
	ErrModelRequired = errors.New("model required")

	// ErrToolRequired is returned when a preset is built without a tool it needs.
	ErrToolRequired = errors.New("tool required")

	// ErrUnknownPreset is returned for a preset name that does not exist.
	ErrUnknownPreset = errors.New("unknown agent preset")

	// ErrEmptyResponse is returned when the model produces no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)
