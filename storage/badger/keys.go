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


package badger

import (
	"fmt"

	"github.com/poiesic/nutrirag/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "colmeta"
	documentPrefix   = "coldoc"
	sequencePrefix   = "colseq"
)

// makeCollectionKey generates the key holding a collection description.
// Format: colmeta:collectionID
func makeCollectionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", collectionPrefix, id))
}

// makeCollectionScanPrefix matches every collection description.
func makeCollectionScanPrefix() []byte {
	return []byte(collectionPrefix + ":")
}

// makeDocumentPrefix matches every document of a collection.
// The trailing separator keeps collection 12 from matching collection 123.
// Format: coldoc:collectionID:
func makeDocumentPrefix(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d:", documentPrefix, id))
}

// makeDocumentKey generates a key for a document within a collection.
// Format: coldoc:collectionID:documentID
func makeDocumentKey(id core.ID, docID string) []byte {
	return append(makeDocumentPrefix(id), docID...)
}

// makeSequenceKey names the insertion sequence of a collection.
func makeSequenceKey(id core.ID) string {
	return fmt.Sprintf("%s:%d", sequencePrefix, id)
}
