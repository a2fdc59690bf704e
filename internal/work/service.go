package work

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	Create(ctx context.Context, w *Work) error
	ListByEmail(ctx context.Context, email string) ([]Work, error)
	DeleteByIDAndEmail(ctx context.Context, id, email string) (int64, error)
}

// Service contains business logic for works.
type Service struct {
	repo Store
}

// NewService creates a new work Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Create persists a work owned by the caller. The owner is stamped from
// the verified claim; a client-supplied email field is never trusted.
func (s *Service) Create(ctx context.Context, owner string, data map[string]interface{}) (*Work, error) {
	w := &Work{
		ID:        uuid.NewString(),
		Email:     owner,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create work: %w", err)
	}
	return w, nil
}

// List returns every work owned by email.
func (s *Service) List(ctx context.Context, email string) ([]Work, error) {
	return s.repo.ListByEmail(ctx, email)
}

// Delete removes the work whose id and owner both match. A mismatch on
// either side yields ErrNotFound; deletion never falls back to a broader
// match.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	n, err := s.repo.DeleteByIDAndEmail(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("delete work: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
