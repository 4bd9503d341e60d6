package core

import (
	"errors"
	"testing"
)

func TestStringField_Lower(t *testing.T) {
	m := Metadata{}
	FoodItem.Set(m, "Banana Split")
	ServingInfo.Set(m, "1 Medium")

	if got := FoodItem.Get(m); got != "banana split" {
		t.Errorf("FoodItem.Get() = %q, want %q", got, "banana split")
	}
	if got := ServingInfo.Get(m); got != "1 Medium" {
		t.Errorf("ServingInfo.Get() = %q, want unchanged value", got)
	}
}

func TestNumberField_MissingIsZero(t *testing.T) {
	m := Metadata{}
	if got := CaloriesPer100g.Get(m); got != 0 {
		t.Errorf("CaloriesPer100g.Get() = %v, want 0", got)
	}

	m["calories_per_100g"] = 105
	if got := CaloriesPer100g.Get(m); got != 105 {
		t.Errorf("CaloriesPer100g.Get() with int = %v, want 105", got)
	}
}

func TestIntAndBoolFields(t *testing.T) {
	m := Metadata{}
	QuestionLength.Set(m, 42)
	HasQuestionMark.Set(m, true)

	if got := QuestionLength.Get(m); got != 42 {
		t.Errorf("QuestionLength.Get() = %d, want 42", got)
	}
	if !HasQuestionMark.Get(m) {
		t.Errorf("HasQuestionMark.Get() = false, want true")
	}
	if AnswerLength.Get(m) != 0 {
		t.Errorf("AnswerLength.Get() on missing field should be 0")
	}
}

func TestValidateSchema(t *testing.T) {
	valid := Metadata{}
	FoodItem.Set(valid, "banana")
	FoodCategory.Set(valid, "fruit")
	CaloriesPer100g.Set(valid, 105)
	KJPer100g.Set(valid, 440)
	ServingInfo.Set(valid, "1 medium")
	Keywords.Set(valid, "banana_fruit")

	if err := ValidateSchema(valid, FoodSchema); err != nil {
		t.Fatalf("ValidateSchema() error = %v, want nil", err)
	}

	missing := valid.Clone()
	delete(missing, KJPer100g.Key())
	if err := ValidateSchema(missing, FoodSchema); !errors.Is(err, ErrMissingField) {
		t.Errorf("ValidateSchema() error = %v, want ErrMissingField", err)
	}

	wrongType := valid.Clone()
	wrongType[CaloriesPer100g.Key()] = "105"
	if err := ValidateSchema(wrongType, FoodSchema); !errors.Is(err, ErrInvalidMetadata) {
		t.Errorf("ValidateSchema() error = %v, want ErrInvalidMetadata", err)
	}
}

func TestSchemaKeysUnique(t *testing.T) {
	for name, schema := range map[string][]Field{"food": FoodSchema, "qa": QASchema} {
		seen := map[string]bool{}
		for _, f := range schema {
			if seen[f.Key()] {
				t.Errorf("%s schema repeats key %q", name, f.Key())
			}
			seen[f.Key()] = true
		}
	}
}
