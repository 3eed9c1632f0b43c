package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pinvent/internal/auth"
	"pinvent/internal/middleware"
	"pinvent/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     auth.CookieWriter
	limiter     *auth.RateLimiter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies auth.CookieWriter, limiter *auth.RateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, limiter: limiter}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

// ForgotPasswordRequest represents a reset link request.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the new password for a reset.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	user, session, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(err)
	}

	h.cookies.Set(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusCreated, user.Profile())
}

// Login godoc
// @Summary Login user
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	ctx := c.Request().Context()
	if ok, retry := h.limiter.AllowLogin(ctx, c.RealIP()); !ok {
		return tooManyRequests(c, retry, "Too many login attempts. Please try again later.")
	}

	user, session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(err)
	}

	h.cookies.Set(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, user.Profile())
}

// Logout godoc
// @Summary Logout user
// @Description Clears the session cookie. Always succeeds.
// @Tags users
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /users/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// LoginStatus godoc
// @Summary Report whether the caller has a valid session
// @Tags users
// @Produce json
// @Success 200 {boolean} boolean
// @Router /users/loginstatus [get]
func (h *AuthHandler) LoginStatus(c echo.Context) error {
	cookie, err := c.Cookie(auth.SessionCookieName)
	if err != nil {
		return c.JSON(http.StatusOK, false)
	}
	return c.JSON(http.StatusOK, h.authService.LoginStatus(cookie.Value))
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags users
// @Accept json
// @Produce plain
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200 {string} string "Password has been successfully changed."
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/changepassword [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	profile, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	if err := h.authService.ChangePassword(c.Request().Context(), profile.ID, req.OldPassword, req.Password); err != nil {
		return fail(err)
	}
	return c.String(http.StatusOK, "Password has been successfully changed.")
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags users
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/forgotpassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	ctx := c.Request().Context()
	if ok, retry := h.limiter.AllowForgotPassword(ctx, req.Email); !ok {
		return tooManyRequests(c, retry, "Too many reset requests. Please try again later.")
	}

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Reset Email Sent"})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags users
// @Accept json
// @Produce json
// @Param resetToken path string true "Reset token from the email link"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/resetpassword/{resetToken} [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	if err := h.authService.ResetPassword(c.Request().Context(), c.Param("resetToken"), req.Password); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful, Please login"})
}
