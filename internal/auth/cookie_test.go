package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordCookie(t *testing.T, fn func(c echo.Context)) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	fn(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestCookieWriter_Set(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	cookie := recordCookie(t, func(c echo.Context) {
		CookieWriter{Secure: true}.Set(c, "jwt-value", expires)
	})

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "jwt-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.WithinDuration(t, expires, cookie.Expires, time.Second)
}

func TestCookieWriter_Clear(t *testing.T) {
	cookie := recordCookie(t, func(c echo.Context) {
		CookieWriter{Secure: true}.Clear(c)
	})

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestCookieWriter_InsecureFallsBackToLax(t *testing.T) {
	cookie := recordCookie(t, func(c echo.Context) {
		CookieWriter{}.Set(c, "v", time.Now().Add(time.Hour))
	})
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}
