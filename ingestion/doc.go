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


// Package ingestion turns nutrition source files into documents and loads
// them into vector collections.
//
// Two sources are supported: a calorie table in CSV form, one document per
// row, and a Q&A text file of blank-line separated records, of which a seeded
// random sample is ingested. Document text and metadata are built from the
// shared field descriptors in package core so retrieval reads back exactly
// what ingestion wrote.
//
// Loader resets a collection (delete, create, bulk add) so that after a
// successful run it holds exactly the documents of that run.
package ingestion
