package journal

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/chroniclelens/internal/apperr"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Draft)
		field string
	}{
		{"valid", func(*Draft) {}, ""},
		{"missing title", func(d *Draft) { d.Title = "" }, "title"},
		{"short title", func(d *Draft) { d.Title = "ab" }, "title"},
		{"long title", func(d *Draft) { d.Title = strings.Repeat("x", 101) }, "title"},
		{"short content", func(d *Draft) { d.Content = "too short" }, "content"},
		{"long content", func(d *Draft) { d.Content = strings.Repeat("x", 5001) }, "content"},
		{"too many tags", func(d *Draft) { d.Tags = []string{"a", "b", "c", "d", "e", "f"} }, "tags"},
		{"blank tag", func(d *Draft) { d.Tags = []string{"a", ""} }, "tags"},
		{"duplicate tag", func(d *Draft) { d.Tags = []string{"Trip", "trip"} }, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)
			err := d.Normalize().Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if _, ok := FieldErrors(err)[tt.field]; !ok {
				t.Errorf("expected %s error, got %v", tt.field, FieldErrors(err))
			}
		})
	}
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Title: "  hi there ", Content: "\tcontent\n", Tags: []string{" a "}}.Normalize()
	if d.Title != "hi there" || d.Content != "content" || d.Tags[0] != "a" {
		t.Errorf("unexpected normalized draft %+v", d)
	}
}

func TestDraftValidate_WhitespaceOnlyContent(t *testing.T) {
	d := validDraft()
	d.Content = "                    "
	if err := d.Normalize().Validate(); err == nil {
		t.Error("whitespace-only content should be rejected")
	}
}

func TestFieldErrors_NonValidation(t *testing.T) {
	if FieldErrors(errors.New("plain")) != nil {
		t.Error("expected nil for a plain error")
	}
}
