// Package work manages the works records owned by registered users.
package work

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Work is one owner-scoped record with an arbitrary payload.
type Work struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ErrNotFound is returned when no work matches the addressed id and owner.
var ErrNotFound = errors.New("work not found")

// Repository handles work persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new work Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts the work record.
func (r *Repository) Create(ctx context.Context, w *Work) error {
	data, err := json.Marshal(w.Data)
	if err != nil {
		return fmt.Errorf("encode work data: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO works (id, email, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		w.ID, w.Email, data, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create work: %w", err)
	}
	return nil
}

// ListByEmail returns every work owned by email, in insertion order.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Work, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, email, data, created_at
		 FROM works WHERE email = $1
		 ORDER BY created_at`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	works := []Work{}
	for rows.Next() {
		var w Work
		var raw []byte
		if err := rows.Scan(&w.ID, &w.Email, &raw, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		if err := json.Unmarshal(raw, &w.Data); err != nil {
			return nil, fmt.Errorf("decode work data: %w", err)
		}
		works = append(works, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate works: %w", err)
	}
	return works, nil
}

// DeleteByIDAndEmail removes the work whose id and owner both match and
// reports how many rows were affected.
func (r *Repository) DeleteByIDAndEmail(ctx context.Context, id, email string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM works WHERE id = $1 AND email = $2`,
		id, email,
	)
	if err != nil {
		return 0, fmt.Errorf("delete work: %w", err)
	}
	return tag.RowsAffected(), nil
}
