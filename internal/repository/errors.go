package repository

import (
	"errors"

	apperrors "pinvent/internal/errors"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a write would break email uniqueness.
	ErrDuplicateEmail = apperrors.ErrEmailTaken
)

func duplicateEmail() error {
	return apperrors.EmailTaken()
}
