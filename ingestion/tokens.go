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
	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/nutrirag/core"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter counts model tokens in document text, to size embedding
// requests before sending them.
type TokenCounter struct {
	count func(text string) int
}

// NewTokenCounter loads the tokenizer of model, falling back to cl100k_base
// for models tiktoken does not know. The encoding file is downloaded and
// cached on first use.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{
		count: func(text string) int {
			return len(enc.Encode(text, nil, nil))
		},
	}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	return c.count(text)
}

// TokenStats summarizes the token counts of a document set.
type TokenStats struct {
	Documents int
	Total     int
	Max       int
	MaxID     string
}

// Mean returns the average tokens per document.
func (s TokenStats) Mean() float64 {
	if s.Documents == 0 {
		return 0
	}
	return float64(s.Total) / float64(s.Documents)
}

// Stats counts the tokens of every document.
func (c *TokenCounter) Stats(docs []*core.Document) TokenStats {
	stats := TokenStats{Documents: len(docs)}
	for _, doc := range docs {
		n := c.count(doc.Text)
		stats.Total += n
		if n > stats.Max {
			stats.Max = n
			stats.MaxID = doc.ID
		}
	}
	return stats
}
