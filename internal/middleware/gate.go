// Package middleware holds request middleware specific to the inventory API.
package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"pinvent/internal/auth"
	apperrors "pinvent/internal/errors"
	"pinvent/internal/logging"
	"pinvent/internal/model"
	"pinvent/internal/repository"
)

type contextKey string

const (
	sessionUserIDKey = "session_user_id"
	currentUserKey   = "current_user"
)

var errNoSession = errors.New("no session")

// UserFinder resolves the user behind a session.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Gate rejects requests without a valid session cookie and attaches the
// resolved user profile for handlers to read through CurrentUser.
func Gate(issuer *auth.SessionIssuer, users UserFinder, log logging.Logger) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.SessionCookieName,
		ContextKey:  sessionUserIDKey,
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			if token == "" {
				return nil, errNoSession
			}
			return issuer.Verify(token)
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			if errors.Is(err, auth.ErrInvalidToken) {
				return unauthorized("Token verification failed", "INVALID_SESSION")
			}
			return unauthorized("Not authorized, please login", "NO_SESSION")
		},
	})

	resolve := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(sessionUserIDKey).(uuid.UUID)
			if !ok {
				return unauthorized("Authentication failed", "AUTH_FAILED")
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, userID)
			if errors.Is(err, repository.ErrNotFound) {
				return unauthorized("User not found", "USER_NOT_FOUND")
			}
			if err != nil {
				log.Error(ctx, "resolve session user", "user_id", userID, "error", err)
				return unauthorized("Authentication failed", "AUTH_FAILED")
			}

			c.Set(currentUserKey, user.Profile())
			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, contextKey(currentUserKey), userID)))
			return next(c)
		}
	}

	return []echo.MiddlewareFunc{verify, resolve}
}

// CurrentUser returns the profile attached by Gate.
func CurrentUser(c echo.Context) (model.Profile, bool) {
	profile, ok := c.Get(currentUserKey).(model.Profile)
	return profile, ok
}

// UserIDFromContext returns the authenticated user id carried by a request context.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey(currentUserKey)).(uuid.UUID)
	return id, ok
}

func unauthorized(message, code string) error {
	err := apperrors.Unauthorized(message)
	err.Code = code
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
}
