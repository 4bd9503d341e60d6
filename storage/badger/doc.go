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


// Package badger implements the storage interfaces on BadgerDB.
//
// Key layout:
//
//	colmeta:<collectionID>          collection description
//	coldoc:<collectionID>:<docID>   document, metadata and embedding
//	colseq:<collectionID>           insertion sequence
//
// Collection IDs are BLAKE2b hashes of the collection name. Similarity
// search is an exact scan: every document vector of the collection is
// compared with the query vector and the best n are kept.
package badger
