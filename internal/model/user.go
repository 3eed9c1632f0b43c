package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultPhoto is the avatar assigned to new users.
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	// DefaultPhone is the phone placeholder assigned to new users.
	DefaultPhone = "+972"
	// DefaultBio is the bio placeholder assigned to new users.
	DefaultBio = "Bio"
)

// User represents an administrator account of the inventory.
type User struct {
	ID           uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null" validate:"required"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required,email,max=255"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Photo        string    `json:"photo" gorm:"size:1024"`
	Phone        string    `json:"phone" gorm:"size:64"`
	Bio          string    `json:"bio" gorm:"size:250" validate:"max=250"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// plaintext waiting to be hashed by the credential store; never persisted.
	password string
}

// SetPassword assigns a new plaintext secret. It is hashed on the next create or save.
func (u *User) SetPassword(plaintext string) {
	u.password = plaintext
}

// PendingPassword returns the plaintext assigned through SetPassword, if any.
func (u *User) PendingPassword() (string, bool) {
	return u.password, u.password != ""
}

// ClearPendingPassword drops the plaintext once it has been hashed.
func (u *User) ClearPendingPassword() {
	u.password = ""
}

// NormalizeEmail trims and lowercases an address so lookups and the unique
// index agree regardless of the backing store's collation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ApplyDefaults fills optional profile fields and normalizes the email.
func (u *User) ApplyDefaults() {
	u.Email = NormalizeEmail(u.Email)
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.Phone == "" {
		u.Phone = DefaultPhone
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
	}
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Photo string    `json:"photo"`
	Phone string    `json:"phone"`
	Bio   string    `json:"bio"`
}

// Profile strips everything but the public profile fields.
func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Phone: u.Phone,
		Bio:   u.Bio,
	}
}
