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

import (
	"fmt"
	"os"

	"github.com/poiesic/nutrirag/core"
)

// PrepareFoodDocuments reads the calorie CSV at path and builds one document per row.
func PrepareFoodDocuments(path string) ([]*core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadFoodCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return BuildFoodDocuments(records)
}

// SampleStats describes how a Q&A sample was drawn.
type SampleStats struct {
	Valid   int // Records with both a question and an answer
	Dropped int // Non-empty records missing either
	Sampled int
}

// PrepareQADocuments parses the Q&A file at path, samples fraction of the
// valid records with seed and builds one document per sampled record.
func PrepareQADocuments(path string, fraction float64, seed uint64) ([]*core.Document, SampleStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, SampleStats{}, err
	}
	defer f.Close()

	pairs, dropped, err := ParseQA(f)
	if err != nil {
		return nil, SampleStats{}, fmt.Errorf("%s: %w", path, err)
	}
	stats := SampleStats{Valid: len(pairs), Dropped: dropped}

	sample, err := Sample(pairs, fraction, seed)
	if err != nil {
		return nil, stats, err
	}
	stats.Sampled = len(sample)

	docs, err := BuildQADocuments(sample)
	return docs, stats, err
}
