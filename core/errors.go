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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyID indicates the document ID is empty.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrEmptyText indicates the document text is empty.
	ErrEmptyText = errors.New("document text cannot be empty")

	// ErrDuplicateID indicates two documents in a batch share an ID.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrInvalidMetadata indicates metadata holds a non-scalar value or
	// violates a schema field.
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrMissingField indicates a schema field is absent from metadata.
	ErrMissingField = errors.New("missing metadata field")
)
