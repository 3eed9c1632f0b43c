package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pinvent/internal/auth"
	"pinvent/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create validates and persists a new user, hashing the plaintext secret.
	Create(ctx context.Context, name, email, password string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Save persists profile changes and re-hashes only a newly assigned password.
	Save(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db    *gorm.DB
	creds credentials
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB, hasher auth.PasswordHasher) UserRepository {
	return &userRepository{db: db, creds: newCredentials(hasher)}
}

func (r *userRepository) Create(ctx context.Context, name, email, password string) (*model.User, error) {
	user := &model.User{Name: name, Email: email}
	user.SetPassword(password)
	if err := r.creds.prepare(user, true); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateEmail()
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	if err := r.creds.prepare(user, false); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicateEmail()
	}
	return err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
