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


package ingestion

import "errors"

var (
	// ErrMalformedRecord is returned when a source record lacks a required
	// field or the source lacks a required column.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidFraction is returned when a sampling fraction is outside (0, 1].
	ErrInvalidFraction = errors.New("sampling fraction must be in (0, 1]")

	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")
)
