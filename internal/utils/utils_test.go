package utils

import (
	"strings"
	"testing"

	"github.com/flipper-app/flipper/internal/errors"
)

func TestFlipbookValidatorTitle(t *testing.T) {
	v := &FlipbookValidator{}

	if err := v.Title("A perfectly fine title"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace only", "   \t "},
		{"too long", strings.Repeat("a", 121)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Title(tt.title)
			statusErr, ok := err.(*errors.ErrorWithStatusCode)
			if !ok || statusErr.StatusCode != 400 {
				t.Errorf("Expected 400, got: %v", err)
			}
		})
	}

	// Rune count, not byte count
	if err := v.Title(strings.Repeat("я", 120)); err != nil {
		t.Errorf("120 multibyte runes should pass: %v", err)
	}
}

func TestFlipbookValidatorDescription(t *testing.T) {
	v := &FlipbookValidator{}

	if err := v.Description(""); err != nil {
		t.Errorf("Empty description is allowed: %v", err)
	}
	if err := v.Description(strings.Repeat("a", 5000)); err != nil {
		t.Errorf("Unexpected error at the limit: %v", err)
	}
	if err := v.Description(strings.Repeat("a", 5001)); err == nil {
		t.Error("Expected error above the limit")
	}
}
