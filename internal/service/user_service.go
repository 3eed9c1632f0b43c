package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "pinvent/internal/errors"
	"pinvent/internal/model"
	"pinvent/internal/repository"
)

// ProfileUpdate holds the editable profile fields. Empty fields keep the current value.
type ProfileUpdate struct {
	Name  string
	Email string
	Phone string
	Bio   string
	Photo string
}

// UserService exposes profile operations.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (model.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (model.Profile, error)
}

type userService struct {
	repo     repository.UserRepository
	profiles *ProfileCache
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, profiles *ProfileCache) UserService {
	return &userService{repo: repo, profiles: profiles}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if cached, ok := s.profiles.Get(ctx, id); ok {
		return cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, apperrors.NotFound(apperrors.ErrUserNotFound, "Not authorized please login first")
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get user: %w", err)
	}

	profile := user.Profile()
	s.profiles.Set(ctx, profile)
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (model.Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, apperrors.NotFound(apperrors.ErrUserNotFound, "User not found")
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get user: %w", err)
	}

	user.Name = keep(update.Name, user.Name)
	user.Email = keep(update.Email, user.Email)
	user.Phone = keep(update.Phone, user.Phone)
	user.Bio = keep(update.Bio, user.Bio)
	user.Photo = keep(update.Photo, user.Photo)

	if err := s.repo.Save(ctx, user); err != nil {
		return model.Profile{}, err
	}
	s.profiles.Invalidate(ctx, id)
	return user.Profile(), nil
}

func keep(value, current string) string {
	if value == "" {
		return current
	}
	return value
}
