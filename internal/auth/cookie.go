package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// CookieWriter sets and clears the session cookie.
type CookieWriter struct {
	Secure bool
}

// Set delivers the session token as an HTTP-only cookie.
func (w CookieWriter) Set(c echo.Context, token string, expires time.Time) {
	cookie := w.base()
	cookie.Value = token
	cookie.Expires = expires
	c.SetCookie(cookie)
}

// Clear replaces the session cookie with an already expired one.
func (w CookieWriter) Clear(c echo.Context) {
	cookie := w.base()
	cookie.Expires = time.Unix(0, 0)
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func (w CookieWriter) base() *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   w.Secure,
		SameSite: http.SameSiteNoneMode,
	}
	// browsers drop SameSite=None cookies that are not Secure
	if !w.Secure {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return cookie
}
