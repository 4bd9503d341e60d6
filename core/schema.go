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
	"fmt"
	"strings"
)

// Kind is the scalar type of a metadata field.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one metadata field shared by the document builders and the
// result formatters.
type Field interface {
	Key() string
	Kind() Kind
	// Check reports whether m holds this field with the right type.
	Check(m Metadata) error
}

// StringField is a text field. Lower fields are stored lower-cased so lookups
// are case-insensitive.
type StringField struct {
	Name  string
	Lower bool
}

func (f StringField) Key() string { return f.Name }
func (f StringField) Kind() Kind  { return KindString }

// Normalize applies the field's normalization rule.
func (f StringField) Normalize(v string) string {
	if f.Lower {
		return strings.ToLower(v)
	}
	return v
}

// Set stores the normalized value.
func (f StringField) Set(m Metadata, v string) {
	m[f.Name] = f.Normalize(v)
}

// Get returns the stored value or "" when absent.
func (f StringField) Get(m Metadata) string {
	s, _ := m[f.Name].(string)
	return s
}

func (f StringField) Check(m Metadata) error {
	v, ok := m[f.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidMetadata, f.Name, f.Kind(), v)
	}
	return nil
}

// NumberField is a float64 field. Missing values read as 0.
type NumberField struct {
	Name string
}

func (f NumberField) Key() string { return f.Name }
func (f NumberField) Kind() Kind  { return KindNumber }

func (f NumberField) Set(m Metadata, v float64) {
	m[f.Name] = v
}

// Get returns the stored value, widening ints, or 0 when absent.
func (f NumberField) Get(m Metadata) float64 {
	switch v := m[f.Name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (f NumberField) Check(m Metadata) error {
	v, ok := m[f.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
	}
	if _, ok := v.(float64); !ok {
		return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidMetadata, f.Name, f.Kind(), v)
	}
	return nil
}

// IntField is an int field. Missing values read as 0.
type IntField struct {
	Name string
}

func (f IntField) Key() string { return f.Name }
func (f IntField) Kind() Kind  { return KindInt }

func (f IntField) Set(m Metadata, v int) {
	m[f.Name] = v
}

func (f IntField) Get(m Metadata) int {
	switch v := m[f.Name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (f IntField) Check(m Metadata) error {
	v, ok := m[f.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
	}
	if _, ok := v.(int); !ok {
		return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidMetadata, f.Name, f.Kind(), v)
	}
	return nil
}

// BoolField is a bool field. Missing values read as false.
type BoolField struct {
	Name string
}

func (f BoolField) Key() string { return f.Name }
func (f BoolField) Kind() Kind  { return KindBool }

func (f BoolField) Set(m Metadata, v bool) {
	m[f.Name] = v
}

func (f BoolField) Get(m Metadata) bool {
	b, _ := m[f.Name].(bool)
	return b
}

func (f BoolField) Check(m Metadata) error {
	v, ok := m[f.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
	}
	if _, ok := v.(bool); !ok {
		return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidMetadata, f.Name, f.Kind(), v)
	}
	return nil
}

// Food record fields.
var (
	FoodItem        = StringField{Name: "food_item", Lower: true}
	FoodCategory    = StringField{Name: "food_category", Lower: true}
	CaloriesPer100g = NumberField{Name: "calories_per_100g"}
	KJPer100g       = NumberField{Name: "kj_per_100g"}
	ServingInfo     = StringField{Name: "serving_info"}
	Keywords        = StringField{Name: "keywords"}
)

// Q&A record fields.
var (
	Question        = StringField{Name: "question"}
	Answer          = StringField{Name: "answer"}
	QuestionLength  = IntField{Name: "question_length"}
	AnswerLength    = IntField{Name: "answer_length"}
	HasQuestionMark = BoolField{Name: "has_question_mark"}
	Topic           = StringField{Name: "topic"}
)

// Collection metadata fields.
var (
	Description = StringField{Name: "description"}
	IngestRunID = StringField{Name: "ingest_run_id"}
	SourcePath  = StringField{Name: "source_path"}
)

// FoodSchema lists the fields every calorie document carries.
var FoodSchema = []Field{FoodItem, FoodCategory, CaloriesPer100g, KJPer100g, ServingInfo, Keywords}

// QASchema lists the fields every Q&A document carries.
var QASchema = []Field{Question, Answer, QuestionLength, AnswerLength, Keywords, HasQuestionMark, Topic}
