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

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a compact identifier derived from content hashing.
// Storage backends use it to build fixed keys for named entities such as collections.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metadata is a flat mapping of scalar values attached to a document.
// Values are string, float64, int or bool.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is the unit of semantic embedding: generated text plus the
// metadata used for exact-value access after retrieval.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// QueryResult is one similarity search hit.
type QueryResult struct {
	Document *Document
	Score    float32 // Cosine similarity, higher is closer
}

// CollectionInfo describes a stored collection.
type CollectionInfo struct {
	Name     string
	Metadata Metadata
	Count    int
}
