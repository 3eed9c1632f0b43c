package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "pinvent/internal/errors"
	"pinvent/internal/logging"
	"pinvent/internal/model"
	"pinvent/internal/repository"
	"pinvent/internal/storage"
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// ImageUpload is an image file received with a product form.
type ImageUpload struct {
	FileName string
	Data     []byte
}

// ProductInput carries product form fields as submitted.
type ProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    string
	Price       string
	Description string
	Image       *ImageUpload
}

// ProductService manages the caller's products.
type ProductService interface {
	Create(ctx context.Context, userID uuid.UUID, in ProductInput) (*model.Product, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Product, error)
	Get(ctx context.Context, userID, productID uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, userID, productID uuid.UUID, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}

type productService struct {
	repo   repository.ProductRepository
	images storage.ImageStore
	log    logging.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, images storage.ImageStore, log logging.Logger) ProductService {
	return &productService{repo: repo, images: images, log: log}
}

func (s *productService) Create(ctx context.Context, userID uuid.UUID, in ProductInput) (*model.Product, error) {
	if in.Name == "" || in.Category == "" || in.Quantity == "" || in.Price == "" || in.Description == "" {
		return nil, apperrors.Validation("Please fill all fields")
	}
	quantity, price, err := parseAmounts(in.Quantity, in.Price)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		UserID:      userID,
		Name:        in.Name,
		SKU:         in.SKU,
		Category:    in.Category,
		Quantity:    quantity,
		Price:       price,
		Description: in.Description,
	}
	if image, ok, err := s.upload(ctx, in.Image); err != nil {
		return nil, err
	} else if ok {
		product.Image = image
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create product: %w", err), "Internal server error")
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	products, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, userID, productID uuid.UUID) (*model.Product, error) {
	return s.owned(ctx, userID, productID, "User not Authorized")
}

func (s *productService) Update(ctx context.Context, userID, productID uuid.UUID, in ProductInput) (*model.Product, error) {
	product, err := s.owned(ctx, userID, productID, "User not authorized to update this product")
	if err != nil {
		return nil, err
	}

	product.Name = keep(in.Name, product.Name)
	product.SKU = keep(in.SKU, product.SKU)
	product.Category = keep(in.Category, product.Category)
	product.Description = keep(in.Description, product.Description)
	if in.Quantity != "" {
		q, err := strconv.ParseInt(strings.TrimSpace(in.Quantity), 10, 64)
		if err != nil || q < 0 {
			return nil, apperrors.Validation("Quantity must be a non-negative whole number")
		}
		product.Quantity = q
	}
	if in.Price != "" {
		p, err := decimal.NewFromString(strings.TrimSpace(in.Price))
		if err != nil || p.IsNegative() {
			return nil, apperrors.Validation("Price must be a non-negative number")
		}
		product.Price = p
	}
	if image, ok, err := s.upload(ctx, in.Image); err != nil {
		return nil, err
	} else if ok {
		product.Image = image
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update product: %w", err), "Internal server error")
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, productID, "User not authorized to delete this product"); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(apperrors.ErrProductNotFound, "Product not found")
	}
	if err != nil {
		return apperrors.Internal(fmt.Errorf("delete product: %w", err), "Internal server error")
	}
	return nil
}

func (s *productService) owned(ctx context.Context, userID, productID uuid.UUID, forbidden string) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(apperrors.ErrProductNotFound, "Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.OwnedBy(userID) {
		return nil, apperrors.Forbidden(forbidden)
	}
	return product, nil
}

// upload stores a png or jpeg image. Other content is skipped and reported as ok=false.
func (s *productService) upload(ctx context.Context, img *ImageUpload) (model.ImageFile, bool, error) {
	if img == nil || len(img.Data) == 0 {
		return model.ImageFile{}, false, nil
	}

	mime := mimetype.Detect(img.Data)
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		s.log.Debug(ctx, "ignoring unsupported image", "file", img.FileName, "type", mime.String())
		return model.ImageFile{}, false, nil
	}

	url, err := s.images.Upload(ctx, img.FileName, mime.String(), img.Data)
	if err != nil {
		return model.ImageFile{}, false, apperrors.Internal(
			fmt.Errorf("%w: %v", apperrors.ErrImageUpload, err),
			"Image could not be uploaded",
		)
	}
	return model.ImageFile{
		FileName: img.FileName,
		FilePath: url,
		FileType: mime.String(),
		FileSize: storage.FormatFileSize(int64(len(img.Data))),
	}, true, nil
}

func parseAmounts(quantity, price string) (int64, decimal.Decimal, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(quantity), 10, 64)
	if err != nil || q < 0 {
		return 0, decimal.Zero, apperrors.Validation("Quantity must be a non-negative whole number")
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil || p.IsNegative() {
		return 0, decimal.Zero, apperrors.Validation("Price must be a non-negative number")
	}
	return q, p, nil
}
