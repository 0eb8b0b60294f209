package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/flipper-app/flipper/internal/errors"
)

type FlipbookValidator struct{}

func (v *FlipbookValidator) Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return &errors.ErrorWithStatusCode{Message: "Title is required", StatusCode: 400}
	}
	if utf8.RuneCountInString(title) > 120 {
		return &errors.ErrorWithStatusCode{Message: "Title is too long", StatusCode: 400}
	}
	return nil
}

func (v *FlipbookValidator) Description(description string) error {
	if utf8.RuneCountInString(description) > 5_000 {
		return &errors.ErrorWithStatusCode{Message: "Description is too long", StatusCode: 400}
	}
	return nil
}
