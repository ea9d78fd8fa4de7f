package ner

import (
	"context"
	"strings"
	"testing"

	"github.com/graphein/backend/pkg/model"

	"github.com/google/uuid"
)

func TestExtractEntities(t *testing.T) {
	tagger := NewLexiconTagger(map[string]string{
		"张三":     "PERSON",
		"北京科技公司": "ORG",
	})
	recognizer := NewRecognizer(tagger, nil)
	doc := &model.SourceDocument{ID: uuid.New(), Type: model.DocumentTypeText}

	text := "张三在北京科技公司工作。"
	entities, err := recognizer.ExtractEntities(context.Background(), doc, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}

	person := entities[0]
	if person.Name != "张三" || person.Type != model.EntityTypePerson {
		t.Errorf("first entity = %s/%s, want 张三/person", person.Name, person.Type)
	}
	if person.Category != model.CategoryBasic {
		t.Errorf("category = %q, want %q", person.Category, model.CategoryBasic)
	}
	if person.SourceID != doc.ID || person.SourceType != model.DocumentTypeText {
		t.Error("source reference not recorded")
	}
	if person.SourceLocation == nil ||
		person.SourceLocation.CharOffset != 0 || person.SourceLocation.CharLength != 6 {
		t.Errorf("source location = %+v, want span [0, 6)", person.SourceLocation)
	}
	if person.ExtractionMethod != model.MethodNERModel {
		t.Errorf("method = %q, want %q", person.ExtractionMethod, model.MethodNERModel)
	}
	if person.Confidence != model.Score(model.MethodNERModel, "default") {
		t.Errorf("confidence = %v, want the ner default", person.Confidence)
	}
	if person.Description != text {
		t.Errorf("description = %q, want the enclosing sentence", person.Description)
	}

	org := entities[1]
	if org.Name != "北京科技公司" || org.Type != model.EntityTypeOrganization {
		t.Errorf("second entity = %s/%s, want 北京科技公司/organization", org.Name, org.Type)
	}
}

func TestExtractEntitiesNilDocument(t *testing.T) {
	recognizer := NewRecognizer(NewLexiconTagger(nil), nil)
	if _, err := recognizer.ExtractEntities(context.Background(), nil, "text"); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestExtractEntitiesEmptyText(t *testing.T) {
	recognizer := NewRecognizer(NewLexiconTagger(map[string]string{"x": "PERSON"}), nil)
	doc := &model.SourceDocument{ID: uuid.New()}

	entities, err := recognizer.ExtractEntities(context.Background(), doc, "   \n ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("got %d entities, want 0 for blank text", len(entities))
	}
}

func TestExtractEntitiesTruncatesLongText(t *testing.T) {
	// Mention beyond the length cap must not be extracted.
	text := strings.Repeat("a", model.MaxTextLength) + " Rust"
	recognizer := NewRecognizer(NewLexiconTagger(map[string]string{"Rust": "LANGUAGE"}), nil)
	doc := &model.SourceDocument{ID: uuid.New()}

	entities, err := recognizer.ExtractEntities(context.Background(), doc, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("got %d entities, want 0 beyond the text cap", len(entities))
	}
}

func TestSentenceWindow(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		want  string
	}{
		{
			name:  "middle sentence",
			text:  "First one. Second sentence here. Third one.",
			start: 18,
			want:  "Second sentence here.",
		},
		{
			name:  "start of text",
			text:  "Opening words here.",
			start: 0,
			want:  "Opening words here.",
		},
		{
			name:  "no terminals",
			text:  "just a fragment",
			start: 5,
			want:  "just a fragment",
		},
		{
			name:  "cjk terminals",
			text:  "你好。这是测试。再见。",
			start: 9,
			want:  "这是测试。",
		},
		{
			name:  "out of range",
			text:  "short",
			start: 99,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sentenceWindow(tt.text, tt.start); got != tt.want {
				t.Errorf("sentenceWindow(%q, %d) = %q, want %q", tt.text, tt.start, got, tt.want)
			}
		})
	}
}
