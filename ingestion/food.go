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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/nutrirag/core"
)

// Calorie CSV column headers.
const (
	ColumnCategory = "FoodCategory"
	ColumnItem     = "FoodItem"
	ColumnServing  = "per100grams"
	ColumnCalories = "Cals_per100grams"
	ColumnKJ       = "KJ_per100grams"
)

const (
	calorieUnit = " cal"
	energyUnit  = " kJ"
)

var requiredColumns = []string{ColumnCategory, ColumnItem, ColumnServing, ColumnCalories, ColumnKJ}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FoodRecord is one row of the calorie table. Numeric columns keep their
// source text, unit suffix included.
type FoodRecord struct {
	Category string `validate:"required"`
	Item     string `validate:"required"`
	Serving  string
	Calories string
	KJ       string
}

// ReadFoodCSV reads every row of a calorie CSV. The header must name all
// five columns; their order is free and extra columns are ignored. A row
// without a food item or category fails the whole read.
func ReadFoodCSV(r io.Reader) ([]FoodRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRecord, name)
		}
	}

	var records []FoodRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedRecord, row, err)
		}

		column := func(name string) string {
			i := index[name]
			if i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}
		rec := FoodRecord{
			Category: column(ColumnCategory),
			Item:     column(ColumnItem),
			Serving:  column(ColumnServing),
			Calories: column(ColumnCalories),
			KJ:       column(ColumnKJ),
		}
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: row %d: %s", ErrMalformedRecord, row, describeValidation(err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, len(verrs))
	for i, fe := range verrs {
		missing[i] = fe.Field()
	}
	return "missing " + strings.Join(missing, ", ")
}

// StripUnit removes every occurrence of unit from s and trims the result.
func StripUnit(s, unit string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, unit, ""))
}

// ParseUnitNumber strips unit and parses the remainder. Blank, unparseable
// and non-finite values yield 0.
func ParseUnitNumber(s, unit string) float64 {
	v, err := strconv.ParseFloat(StripUnit(s, unit), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FoodID returns the document ID for the row at index.
func FoodID(index int) string {
	return fmt.Sprintf("food_%d", index)
}

// BuildFoodDocument formats one calorie row. index is the zero-based row
// position and becomes the document ID.
func BuildFoodDocument(index int, rec FoodRecord) *core.Document {
	calories := StripUnit(rec.Calories, calorieUnit)
	energy := StripUnit(rec.KJ, energyUnit)

	var b strings.Builder
	fmt.Fprintf(&b, "Food: %s\n", rec.Item)
	fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	b.WriteString("Nutritional Information:\n")
	fmt.Fprintf(&b, "- Calories: %s per 100g\n", calories)
	fmt.Fprintf(&b, "- Energy: %s kJ per 100g\n", energy)
	fmt.Fprintf(&b, "- Serving size reference: %s\n", rec.Serving)
	b.WriteString("\n")
	fmt.Fprintf(&b, "This is a %s food item that provides %s calories per 100 grams.",
		strings.ToLower(rec.Category), calories)

	m := core.Metadata{}
	core.FoodItem.Set(m, rec.Item)
	core.FoodCategory.Set(m, rec.Category)
	core.CaloriesPer100g.Set(m, ParseUnitNumber(rec.Calories, calorieUnit))
	core.KJPer100g.Set(m, ParseUnitNumber(rec.KJ, energyUnit))
	core.ServingInfo.Set(m, rec.Serving)
	core.Keywords.Set(m, strings.ReplaceAll(
		core.FoodItem.Normalize(rec.Item)+" "+core.FoodCategory.Normalize(rec.Category), " ", "_"))

	return &core.Document{
		ID:       FoodID(index),
		Text:     b.String(),
		Metadata: m,
	}
}

// BuildFoodDocuments formats every row, numbering from zero.
func BuildFoodDocuments(records []FoodRecord) ([]*core.Document, error) {
	docs := make([]*core.Document, len(records))
	for i, rec := range records {
		docs[i] = BuildFoodDocument(i, rec)
		if err := core.ValidateSchema(docs[i].Metadata, core.FoodSchema); err != nil {
			return nil, fmt.Errorf("%s: %w", docs[i].ID, err)
		}
	}
	return docs, nil
}
