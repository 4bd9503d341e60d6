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
	"io"
	"math"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/nutrirag/core"
)

// DefaultSeed makes Q&A sampling reproducible unless a caller picks another seed.
const DefaultSeed uint64 = 42

// DefaultSampleFraction is the share of Q&A records ingested by default.
const DefaultSampleFraction = 0.05

// QATopic tags every Q&A document.
const QATopic = "nutrition_qa"

const (
	questionPrefix = "Question:"
	answerPrefix   = "Answer:"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// QAPair is one parsed question and answer.
type QAPair struct {
	Question string
	Answer   string
}

// ParseQA splits the text into blank-line separated records and keeps those
// with both a non-empty Question: and Answer: line. It also returns how many
// non-empty records were dropped.
func ParseQA(r io.Reader) ([]QAPair, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	var (
		pairs   []QAPair
		dropped int
	)
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		var pair QAPair
		for _, line := range strings.Split(para, "\n") {
			switch {
			case strings.HasPrefix(line, questionPrefix):
				pair.Question = strings.TrimSpace(strings.TrimPrefix(line, questionPrefix))
			case strings.HasPrefix(line, answerPrefix):
				pair.Answer = strings.TrimSpace(strings.TrimPrefix(line, answerPrefix))
			}
		}
		if pair.Question == "" || pair.Answer == "" {
			dropped++
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, dropped, nil
}

// SampleSize returns max(1, floor(n*fraction)) capped at n, or 0 when n is 0.
func SampleSize(n int, fraction float64) int {
	if n <= 0 {
		return 0
	}
	return min(max(1, int(math.Floor(float64(n)*fraction))), n)
}

// Sample draws SampleSize(len(pairs), fraction) pairs without replacement.
// The same seed always selects the same pairs. Selected pairs keep their
// source order.
func Sample(pairs []QAPair, fraction float64, seed uint64) ([]QAPair, error) {
	if math.IsNaN(fraction) || fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFraction, fraction)
	}
	size := SampleSize(len(pairs), fraction)
	if size == 0 {
		return []QAPair{}, nil
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(len(pairs))[:size]
	slices.Sort(picked)

	sample := make([]QAPair, size)
	for i, idx := range picked {
		sample[i] = pairs[idx]
	}
	return sample, nil
}

// QAID returns the document ID for the sampled pair at index.
func QAID(index int) string {
	return fmt.Sprintf("qa_%d", index)
}

// BuildQADocument formats one Q&A pair. index is the pair's position in the
// sample and becomes the document ID.
func BuildQADocument(index int, pair QAPair) *core.Document {
	text := fmt.Sprintf("Question: %s\nAnswer: %s\n\nThis Q&A pair provides information about nutrition and health topics.",
		pair.Question, pair.Answer)

	m := core.Metadata{}
	core.Question.Set(m, pair.Question)
	core.Answer.Set(m, pair.Answer)
	core.QuestionLength.Set(m, utf8.RuneCountInString(pair.Question))
	core.AnswerLength.Set(m, utf8.RuneCountInString(pair.Answer))
	core.Keywords.Set(m, keywords(pair.Question, pair.Answer))
	core.HasQuestionMark.Set(m, strings.Contains(pair.Question, "?"))
	core.Topic.Set(m, QATopic)

	return &core.Document{
		ID:       QAID(index),
		Text:     text,
		Metadata: m,
	}
}

// BuildQADocuments formats every pair, numbering from zero.
func BuildQADocuments(pairs []QAPair) ([]*core.Document, error) {
	docs := make([]*core.Document, len(pairs))
	for i, pair := range pairs {
		docs[i] = BuildQADocument(i, pair)
		if err := core.ValidateSchema(docs[i].Metadata, core.QASchema); err != nil {
			return nil, fmt.Errorf("%s: %w", docs[i].ID, err)
		}
	}
	return docs, nil
}

// keywords returns the distinct lower-cased words of the texts, sorted and
// space separated.
func keywords(texts ...string) string {
	var words []string
	for _, text := range texts {
		words = append(words, wordPattern.FindAllString(strings.ToLower(text), -1)...)
	}
	slices.Sort(words)
	return strings.Join(slices.Compact(words), " ")
}
