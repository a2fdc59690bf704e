package user

import (
	"context"
	"errors"
	"fmt"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	Create(ctx context.Context, email string, profile map[string]interface{}) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Service contains business logic for user management.
type Service struct {
	repo Store
}

// NewService creates a new user Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Register creates the account for email if it does not exist yet. The
// returned bool reports whether a new record was created; registering an
// existing email is a no-op, never an error.
func (s *Service) Register(ctx context.Context, email string, profile map[string]interface{}) (*User, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("check existing user: %w", err)
	}

	u, err := s.repo.Create(ctx, email, profile)
	if err != nil {
		// A concurrent registration may have won the insert race.
		if errors.Is(err, ErrAlreadyExists) {
			existing, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, fmt.Errorf("get user after duplicate insert: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

// GetByEmail returns the user registered under email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}
