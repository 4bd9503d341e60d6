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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//   - Metadata values must be scalars (string, float64, int, bool)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, doc.ID, ErrEmptyText)
	}

	if err := ValidateMetadata(doc.Metadata); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, doc.ID, err)
	}

	return nil
}

// ValidateDocuments validates every document and checks that IDs are unique
// within the batch.
func ValidateDocuments(docs []*Document) error {
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := ValidateDocument(doc); err != nil {
			return err
		}
		if _, ok := seen[doc.ID]; ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidDocument, ErrDuplicateID, doc.ID)
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}

// ValidateMetadata checks that all values are supported scalar types.
func ValidateMetadata(m Metadata) error {
	for k, v := range m {
		switch v.(type) {
		case string, float64, int, bool:
		default:
			return fmt.Errorf("%w: field %q has unsupported type %T", ErrInvalidMetadata, k, v)
		}
	}
	return nil
}

// ValidateSchema checks that every field of the schema is present in m with
// the expected type.
func ValidateSchema(m Metadata, schema []Field) error {
	for _, f := range schema {
		if err := f.Check(m); err != nil {
			return err
		}
	}
	return nil
}
