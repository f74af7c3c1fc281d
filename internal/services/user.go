package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// UserService handles user-related operations.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u.TimeZone == "" {
		u.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(u.TimeZone); err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", u.TimeZone, model.ErrValidation)
	}
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.store.Users().Delete(ctx, userID)
}
