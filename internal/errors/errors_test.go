package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", Validation("Please fill in all required fields"), http.StatusBadRequest, "Please fill in all required fields"},
		{"conflict", Conflict("Email has already been registered"), http.StatusBadRequest, "Email has already been registered"},
		{"email taken", EmailTaken(), http.StatusBadRequest, "Email has already been registered"},
		{"authentication", Authentication("Invalid email or password"), http.StatusBadRequest, "Invalid email or password"},
		{"unauthorized", Unauthorized("Not authorized, please login"), http.StatusUnauthorized, "Not authorized, please login"},
		{"forbidden", Forbidden("User not Authorized"), http.StatusUnauthorized, "User not Authorized"},
		{"not found", NotFound(ErrUserNotFound, "User does not exist."), http.StatusNotFound, "User does not exist."},
		{"throttled", TooManyRequests("slow down"), http.StatusTooManyRequests, "slow down"},
		{"internal", Internal(errors.New("db down"), "Server error"), http.StatusInternalServerError, "Server error"},
		{"wrapped domain error", fmt.Errorf("update: %w", Conflict("dup")), http.StatusBadRequest, "dup"},
		{"sentinel user", fmt.Errorf("find: %w", ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"sentinel token", ErrInvalidResetToken, http.StatusNotFound, "Invalid or Expired Token."},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantMsg, got.ToErrorResponse().Error)
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Internal(cause, "Email not sent. Please try again.")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Email not sent. Please try again.", err.Error())
	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTP(err).StatusCode)
}

func TestEmailTaken(t *testing.T) {
	err := EmailTaken()

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, err.Kind)
	assert.Equal(t, "EMAIL_TAKEN", MapErrorToHTTP(err).Code)
}
