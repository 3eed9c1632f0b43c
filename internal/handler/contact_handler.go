package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pinvent/internal/middleware"
	"pinvent/internal/service"
)

// ContactHandler relays contact form submissions.
type ContactHandler struct {
	svc service.ContactService
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(svc service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactUs godoc
// @Summary Send a message to the operators
// @Tags contact
// @Accept json
// @Produce json
// @Param request body ContactRequest true "Subject and message"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /contactus [post]
func (h *ContactHandler) ContactUs(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	if err := h.svc.Submit(c.Request().Context(), current.Email, req.Subject, req.Message); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Contact form submitted successfully"})
}
