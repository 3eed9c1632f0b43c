package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pinvent/internal/auth"
	"pinvent/internal/cache"
	"pinvent/internal/config"
	"pinvent/internal/handler"
	"pinvent/internal/logging"
	"pinvent/internal/mail"
	"pinvent/internal/middleware"
	"pinvent/internal/repository"
	"pinvent/internal/service"
	"pinvent/internal/storage"
)

type discardMailer struct{}

func (discardMailer) Send(_ context.Context, _ mail.Message) error { return nil }

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newTestServerWithLimiter(t, auth.NewRateLimiter(nil))
}

func newTestServerWithLimiter(t *testing.T, limiter *auth.RateLimiter) *echo.Echo {
	t.Helper()
	log := logging.Nop()
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}
	store := repository.NewMemoryStore()
	users := store.Users(hasher)
	issuer := auth.NewSessionIssuer("router-secret", time.Hour)

	authService := service.NewAuthService(users, store.ResetTokens(), hasher, issuer, discardMailer{}, nil,
		service.AuthConfig{FrontendURL: "http://localhost:3000"}, log)

	cfg := &config.Config{FrontendURL: "http://localhost:3000"}
	e := echo.New()
	Register(
		e,
		cfg,
		log,
		middleware.Gate(issuer, users, log),
		handler.NewAuthHandler(authService, auth.CookieWriter{Secure: false}, limiter),
		handler.NewUserHandler(service.NewUserService(users, nil)),
		handler.NewProductHandler(service.NewProductService(store.Products(), &storage.S3ImageStore{}, log)),
		handler.NewContactHandler(service.NewContactService(discardMailer{}, "ops@example.com", "team@example.com")),
	)
	return e
}

func do(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookieName)
	return nil
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	msg, _ := body["error"].(string)
	return msg
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/users/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	registered := sessionCookie(t, rec)
	assert.True(t, registered.HttpOnly)
	assert.Equal(t, "/", registered.Path)

	rec = do(e, http.MethodPost, "/api/users/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email has already been registered", errorOf(t, rec))

	rec = do(e, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"wrong-one"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email or password", errorOf(t, rec))

	rec = do(e, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session := sessionCookie(t, rec)

	rec = do(e, http.MethodGet, "/api/users/loginstatus", "", session)
	assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	rec = do(e, http.MethodGet, "/api/users/getuser", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotEmpty(t, profile["_id"])

	rec = do(e, http.MethodGet, "/api/users/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out"}`, rec.Body.String())
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	rec = do(e, http.MethodGet, "/api/users/getuser", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, please login", errorOf(t, rec))

	rec = do(e, http.MethodGet, "/api/users/loginstatus", "")
	assert.Equal(t, "false", strings.TrimSpace(rec.Body.String()))

	rec = do(e, http.MethodGet, "/api/users/getuser", "", &http.Cookie{Name: auth.SessionCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token verification failed", errorOf(t, rec))
}

func TestChangePasswordAndProfile(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/users/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := sessionCookie(t, rec)

	rec = do(e, http.MethodPatch, "/api/users/changepassword", `{"oldPassword":"nope","password":"secret2"}`, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Old password is incorrect.", errorOf(t, rec))

	rec = do(e, http.MethodPatch, "/api/users/changepassword", `{"oldPassword":"secret1","password":"secret2"}`, session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been successfully changed.", rec.Body.String())

	rec = do(e, http.MethodPatch, "/api/users/updateuser", `{"email":"bad-email"}`, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email", errorOf(t, rec))

	rec = do(e, http.MethodPatch, "/api/users/updateuser", `{"bio":"Stock keeper"}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bio":"Stock keeper"`)

	rec = do(e, http.MethodPost, "/api/users/forgotpassword", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User does not exist.", errorOf(t, rec))

	rec = do(e, http.MethodPut, "/api/users/resetpassword/deadbeef", `{"password":"secret3"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid or Expired Token.", errorOf(t, rec))
}

func TestProductsAndContact(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/users/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ada := sessionCookie(t, rec)
	rec = do(e, http.MethodPost, "/api/users/register", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	bob := sessionCookie(t, rec)

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	for k, v := range map[string]string{
		"name": "Hammer", "sku": "TL-1", "category": "Tools", "quantity": "3", "price": "9.99", "description": "Claw hammer",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &form)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.AddCookie(ada)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	id, _ := product["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "9.99", product["price"])

	rec = do(e, http.MethodGet, "/api/products/"+id, "", bob)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not Authorized", errorOf(t, rec))

	rec = do(e, http.MethodPost, "/api/products",
		`{"name":"Saw","sku":"TL-2","category":"Tools","quantity":4,"price":"12.50","description":"Hand saw"}`, ada)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saw))
	assert.Equal(t, "Saw", saw["name"])
	assert.Equal(t, "12.5", saw["price"])
	sawID, _ := saw["_id"].(string)

	rec = do(e, http.MethodPatch, "/api/products/"+sawID, `{"quantity":7}`, ada)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(e, http.MethodGet, "/api/products/"+sawID, "", ada)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saw))
	assert.Equal(t, float64(7), saw["quantity"])
	assert.Equal(t, "Saw", saw["name"])

	rec = do(e, http.MethodPost, "/api/products", `{"name":"Saw"}`, ada)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill all fields", errorOf(t, rec))

	rec = do(e, http.MethodGet, "/api/products", "", ada)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(e, http.MethodDelete, "/api/products/"+id, "", ada)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/products/not-a-uuid", "", ada)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/contactus", `{"subject":"Hi"}`, ada)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all required fields", errorOf(t, rec))

	rec = do(e, http.MethodPost, "/api/contactus", `{"subject":"Hi","message":"Hello"}`, ada)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Contact form submitted successfully"}`, rec.Body.String())
}

func TestBootstrapRoutes(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/", "")
	assert.Equal(t, "Home Page", rec.Body.String())

	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(e, http.MethodGet, "/api/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", errorOf(t, rec))
}

func TestThrottling(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.NewFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	e := newTestServerWithLimiter(t, auth.NewRateLimiter(client))

	rec := do(e, http.MethodPost, "/api/users/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for i := 1; i <= 10; i++ {
		rec = do(e, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"wrong-one"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, "attempt %d", i)
	}
	rec = do(e, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Retry-After"))
	assert.Equal(t, "Too many login attempts. Please try again later.", errorOf(t, rec))

	for i := 1; i <= 3; i++ {
		rec = do(e, http.MethodPost, "/api/users/forgotpassword", `{"email":"ada@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code, "request %d: %s", i, rec.Body.String())
	}
	rec = do(e, http.MethodPost, "/api/users/forgotpassword", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body["code"])
}
