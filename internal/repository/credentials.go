package repository

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"pinvent/internal/auth"
	apperrors "pinvent/internal/errors"
	"pinvent/internal/model"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 255
)

var userFieldMessages = map[string]string{
	"Name.required":  "Please add a name",
	"Email.required": "Please add an email",
	"Email.email":    "Please enter a valid email",
	"Email.max":      "Email must not exceed 255 characters",
	"Bio.max":        "Bio must not exceed 250 characters",
}

// credentials holds the write-path rules shared by every user store:
// schema validation and hashing of newly assigned passwords.
type credentials struct {
	hasher   auth.PasswordHasher
	validate *validator.Validate
}

func newCredentials(hasher auth.PasswordHasher) credentials {
	return credentials{hasher: hasher, validate: validator.New()}
}

// prepare validates user and replaces a pending plaintext password with its hash.
// requirePassword is set on create, where a user without a secret is invalid.
func (c credentials) prepare(user *model.User, requirePassword bool) error {
	user.ApplyDefaults()

	if err := c.validate.Struct(user); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if msg, ok := userFieldMessages[fe.Field()+"."+fe.Tag()]; ok {
				return apperrors.Validation(msg)
			}
			return apperrors.Validation(fmt.Sprintf("Invalid %s", fe.Field()))
		}
		return fmt.Errorf("validate user: %w", err)
	}

	plaintext, pending := user.PendingPassword()
	if !pending {
		if requirePassword || user.PasswordHash == "" {
			return apperrors.Validation("Please add a password")
		}
		return nil
	}

	switch n := utf8.RuneCountInString(plaintext); {
	case n < minPasswordLen:
		return apperrors.Validation("Password must be at least 6 characters long")
	case n > maxPasswordLen:
		return apperrors.Validation("Password must not exceed 255 characters")
	}

	hash, err := c.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.ClearPendingPassword()
	return nil
}
