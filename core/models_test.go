package core

import "testing"

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "simple content",
			content:  "nutrition_db",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "Nutrition Q&A database with questions and answers about nutrition and health",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("nutrition_db")
	id2 := IDFromContent("nutrition_qna")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestMetadata_Clone(t *testing.T) {
	m := Metadata{"food_item": "banana", "calories_per_100g": 89.0}
	c := m.Clone()
	c["food_item"] = "apple"

	if m["food_item"] != "banana" {
		t.Errorf("Clone() shares storage with original")
	}
	if c["calories_per_100g"] != 89.0 {
		t.Errorf("Clone() lost value: %v", c["calories_per_100g"])
	}

	var nilMeta Metadata
	if nilMeta.Clone() != nil {
		t.Errorf("Clone() of nil metadata should be nil")
	}
}
