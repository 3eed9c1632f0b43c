package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is an inventory item owned by a single user.
type Product struct {
	ID          uuid.UUID       `json:"_id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID       `json:"user" gorm:"type:char(36);not null;index"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	SKU         string          `json:"sku" gorm:"size:128;index"`
	Category    string          `json:"category" gorm:"size:255;not null"`
	Quantity    int64           `json:"quantity" gorm:"not null;default:0"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	Description string          `json:"description" gorm:"type:text"`
	Image       ImageFile       `json:"image" gorm:"embedded;embeddedPrefix:image_"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ImageFile describes an image hosted by the image store.
type ImageFile struct {
	FileName string `json:"fileName,omitempty" gorm:"size:255"`
	FilePath string `json:"filePath,omitempty" gorm:"size:1024"`
	FileType string `json:"fileType,omitempty" gorm:"size:64"`
	FileSize string `json:"fileSize,omitempty" gorm:"size:32"`
}

// OwnedBy reports whether the product belongs to userID.
func (p *Product) OwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
