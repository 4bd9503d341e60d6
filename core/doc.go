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


// Package core defines the domain model shared by ingestion, storage and
// retrieval: documents, their scalar metadata, query results and the
// metadata schema.
//
// The schema is a set of typed field descriptors (StringField, NumberField,
// IntField, BoolField). Builders write metadata through the descriptors and
// formatters read it back through the same values, so field names and case
// normalization cannot drift between the two sides. Numeric reads of an
// absent field return zero.
//
//	m := core.Metadata{}
//	core.FoodItem.Set(m, "Banana") // stored as "banana"
//	core.CaloriesPer100g.Get(m)    // 0 until set
package core
