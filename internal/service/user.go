package service

import (
	"context"
	"fmt"

	"github.com/ebetcoin/backend/internal/model"
)

type UserService struct {
	repo UserStore
}

func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// GetOrCreateUser registers the authenticated user on first sight and returns
// the stored row.
func (s *UserService) GetOrCreateUser(ctx context.Context, userID int64, username string) (*model.User, error) {
	user := &model.User{ID: userID}
	if username != "" {
		user.Username = &username
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUser(ctx, userID)
}
