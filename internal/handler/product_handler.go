package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "pinvent/internal/errors"
	"pinvent/internal/middleware"
	"pinvent/internal/service"
)

// maxImageBytes caps the size of an uploaded product image.
const maxImageBytes = 10 << 20

// ProductHandler handles product endpoints.
type ProductHandler struct {
	svc service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept mpfd,json
// @Produce json
// @Param name formData string true "Name"
// @Param sku formData string false "SKU"
// @Param category formData string true "Category"
// @Param quantity formData integer true "Quantity"
// @Param price formData number true "Price"
// @Param description formData string true "Description"
// @Param image formData file false "PNG or JPEG image"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	in, err := productInput(c)
	if err != nil {
		return err
	}

	product, err := h.svc.Create(c.Request().Context(), current.ID, in)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProducts godoc
// @Summary List the caller's products, newest first
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) GetProducts(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	products, err := h.svc.List(c.Request().Context(), current.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get one of the caller's products
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.svc.Get(c.Request().Context(), current.ID, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct godoc
// @Summary Update a product
// @Tags products
// @Accept mpfd,json
// @Produce json
// @Param id path string true "Product ID"
// @Param name formData string false "Name"
// @Param sku formData string false "SKU"
// @Param category formData string false "Category"
// @Param quantity formData integer false "Quantity"
// @Param price formData number false "Price"
// @Param description formData string false "Description"
// @Param image formData file false "PNG or JPEG image"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	id, err := productID(c)
	if err != nil {
		return err
	}
	in, err := productInput(c)
	if err != nil {
		return err
	}

	if _, err := h.svc.Update(c.Request().Context(), current.ID, id, in); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product updated successfully"})
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), current.ID, id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func productID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fail(apperrors.NotFound(apperrors.ErrProductNotFound, "Product not found"))
	}
	return id, nil
}

// ProductRequest carries product fields from a multipart form, urlencoded form or JSON body.
type ProductRequest struct {
	Name        looseString `json:"name" form:"name"`
	SKU         looseString `json:"sku" form:"sku"`
	Category    looseString `json:"category" form:"category"`
	Quantity    looseString `json:"quantity" form:"quantity"`
	Price       looseString `json:"price" form:"price"`
	Description looseString `json:"description" form:"description"`
}

// looseString accepts a JSON string or a bare JSON number.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(data)
	return nil
}

// productInput reads product fields and the optional image file.
func productInput(c echo.Context) (service.ProductInput, error) {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return service.ProductInput{}, badRequest("Invalid request body")
	}
	in := service.ProductInput{
		Name:        string(req.Name),
		SKU:         string(req.SKU),
		Category:    string(req.Category),
		Quantity:    string(req.Quantity),
		Price:       string(req.Price),
		Description: string(req.Description),
	}

	header, err := c.FormFile("image")
	if err != nil {
		// no file part
		return in, nil
	}
	if header.Size > maxImageBytes {
		return in, badRequest("Image must not exceed 10 MB")
	}
	file, err := header.Open()
	if err != nil {
		return in, badRequest("Invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return in, badRequest("Invalid image upload")
	}
	if len(data) > maxImageBytes {
		return in, badRequest("Image must not exceed 10 MB")
	}
	in.Image = &service.ImageUpload{FileName: header.Filename, Data: data}
	return in, nil
}
