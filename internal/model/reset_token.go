package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetToken is a single-use password reset capability. Only the hash of the
// secret mailed to the user is stored.
type ResetToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"` // one live token per user
	TokenHash string    `json:"-" gorm:"size:64;index;not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

// Expired reports whether the token is no longer usable at t.
func (t *ResetToken) Expired(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}

// BeforeCreate sets UUID before creating the record.
func (t *ResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
