package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"pinvent/internal/middleware"
	"pinvent/internal/service"
)

// UserHandler serves the caller's profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest holds editable profile fields. Omitted fields are kept.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio" validate:"omitempty,max=250"`
	Photo string `json:"photo" validate:"omitempty,url"`
}

var updateUserMessages = map[string]string{
	"Email": "Please enter a valid email",
	"Bio":   "Bio must not exceed 250 characters",
	"Photo": "Photo must be a valid URL",
}

// GetUser godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/getuser [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	profile, err := h.svc.GetProfile(c.Request().Context(), current.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateUser godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/updateuser [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(validationMessage(err, updateUserMessages))
	}

	profile, err := h.svc.UpdateProfile(c.Request().Context(), current.ID, service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Bio:   req.Bio,
		Photo: req.Photo,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func validationMessage(err error, messages map[string]string) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := messages[fieldErrs[0].Field()]; ok {
			return msg
		}
		return "Invalid " + fieldErrs[0].Field()
	}
	return err.Error()
}
