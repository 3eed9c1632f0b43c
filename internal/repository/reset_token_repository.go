package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pinvent/internal/model"
)

// ResetTokenRepository persists password reset tokens, at most one per user.
type ResetTokenRepository interface {
	// Replace stores token as the only reset token of its user.
	Replace(ctx context.Context, token *model.ResetToken) error
	// FindValid returns the token with the given hash that is still live at now.
	FindValid(ctx context.Context, tokenHash string, now time.Time) (*model.ResetToken, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository builds a GORM-backed reset token store.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Replace upserts on the unique user_id index, so concurrent requests for the
// same user cannot leave two live tokens behind.
func (r *resetTokenRepository) Replace(ctx context.Context, token *model.ResetToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "created_at", "expires_at"}),
	}).Create(token).Error
}

func (r *resetTokenRepository) FindValid(ctx context.Context, tokenHash string, now time.Time) (*model.ResetToken, error) {
	var token model.ResetToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *resetTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ResetToken{}).Error
}
