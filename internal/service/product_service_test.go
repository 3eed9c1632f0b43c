package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "pinvent/internal/errors"
	"pinvent/internal/logging"
	"pinvent/internal/repository"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func validInput() ProductInput {
	return ProductInput{
		Name:        "Hammer",
		SKU:         "SKU-1",
		Category:    "tools",
		Quantity:    "4",
		Price:       "12.50",
		Description: "Steel claw hammer",
	}
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := NewProductService(repository.NewMemoryStore().Products(), new(MockImageStore), logging.Nop())
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*ProductInput)
		message string
	}{
		{name: "missing name", mutate: func(in *ProductInput) { in.Name = "" }, message: "Please fill all fields"},
		{name: "missing price", mutate: func(in *ProductInput) { in.Price = "" }, message: "Please fill all fields"},
		{name: "bad quantity", mutate: func(in *ProductInput) { in.Quantity = "many" }, message: "Quantity must be a non-negative whole number"},
		{name: "negative price", mutate: func(in *ProductInput) { in.Price = "-1" }, message: "Price must be a non-negative number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, uuid.New(), in)
			assertKind(t, err, apperrors.KindValidation, tt.message)
		})
	}
}

func TestProductService_CreateWithImage(t *testing.T) {
	images := new(MockImageStore)
	images.On("Upload", mock.Anything, "hammer.png", "image/png", pngHeader).
		Return("https://cdn.example.com/Pinvent%20App/x-hammer.png", nil)
	svc := NewProductService(repository.NewMemoryStore().Products(), images, logging.Nop())

	in := validInput()
	in.Image = &ImageUpload{FileName: "hammer.png", Data: pngHeader}
	product, err := svc.Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)

	assert.Equal(t, "12.5", product.Price.String())
	assert.Equal(t, int64(4), product.Quantity)
	assert.Equal(t, "image/png", product.Image.FileType)
	assert.Equal(t, "hammer.png", product.Image.FileName)
	assert.Equal(t, "https://cdn.example.com/Pinvent%20App/x-hammer.png", product.Image.FilePath)
	assert.Equal(t, "29 Bytes", product.Image.FileSize)
	images.AssertExpectations(t)
}

func TestProductService_IgnoresNonImageUpload(t *testing.T) {
	images := new(MockImageStore)
	svc := NewProductService(repository.NewMemoryStore().Products(), images, logging.Nop())

	in := validInput()
	in.Image = &ImageUpload{FileName: "notes.txt", Data: []byte("plain text, not an image")}
	product, err := svc.Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	assert.Empty(t, product.Image.FilePath)
	images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_UploadFailure(t *testing.T) {
	images := new(MockImageStore)
	images.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))
	svc := NewProductService(repository.NewMemoryStore().Products(), images, logging.Nop())

	in := validInput()
	in.Image = &ImageUpload{FileName: "a.png", Data: pngHeader}
	_, err := svc.Create(context.Background(), uuid.New(), in)
	assertKind(t, err, apperrors.KindInternal, "Image could not be uploaded")
	assert.ErrorIs(t, err, apperrors.ErrImageUpload)
}

func TestProductService_Ownership(t *testing.T) {
	svc := NewProductService(repository.NewMemoryStore().Products(), new(MockImageStore), logging.Nop())
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	product, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, product.ID)
	assertKind(t, err, apperrors.KindForbidden, "User not Authorized")

	_, err = svc.Update(ctx, stranger, product.ID, ProductInput{Name: "stolen"})
	assertKind(t, err, apperrors.KindForbidden, "User not authorized to update this product")

	err = svc.Delete(ctx, stranger, product.ID)
	assertKind(t, err, apperrors.KindForbidden, "User not authorized to delete this product")

	_, err = svc.Get(ctx, owner, uuid.New())
	assertKind(t, err, apperrors.KindNotFound, "Product not found")

	updated, err := svc.Update(ctx, owner, product.ID, ProductInput{Quantity: "9"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Quantity)
	assert.Equal(t, "Hammer", updated.Name)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, owner, product.ID))
	_, err = svc.Get(ctx, owner, product.ID)
	assertKind(t, err, apperrors.KindNotFound, "Product not found")
}

func TestContactService_Submit(t *testing.T) {
	mails := &outbox{}
	svc := NewContactService(mails, "ops@example.com", "team@example.com")
	ctx := context.Background()

	err := svc.Submit(ctx, "ada@example.com", "", "hi")
	assertKind(t, err, apperrors.KindValidation, "Please fill in all required fields")

	require.NoError(t, svc.Submit(ctx, "ada@example.com", "Stock question", "Is <b>this</b> in stock?"))
	require.Len(t, mails.sent, 1)
	msg := mails.sent[0]
	assert.Equal(t, "ops@example.com", msg.To)
	assert.Equal(t, "team@example.com", msg.From)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.True(t, bytes.Contains([]byte(msg.HTML), []byte("&lt;b&gt;this&lt;/b&gt;")))

	failing := new(MockDispatcher)
	failing.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	err = NewContactService(failing, "ops@example.com", "team@example.com").Submit(ctx, "a@b.co", "s", "m")
	assertKind(t, err, apperrors.KindInternal, "Server error. Please try again later.")
}
