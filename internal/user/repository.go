// Package user manages registered accounts and their persistence.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents a registered account. Profile carries whatever extra
// fields the client sent at registration.
type User struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Profile   map[string]interface{} `json:"profile,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when an email is already registered.
var ErrAlreadyExists = errors.New("user already exists")

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the created record.
func (r *Repository) Create(ctx context.Context, email string, profile map[string]interface{}) (*User, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	u := &User{}
	var raw []byte
	err = r.db.QueryRow(ctx,
		`INSERT INTO users (email, profile)
		 VALUES ($1, $2::jsonb)
		 RETURNING id, email, profile, created_at`,
		email, data,
	).Scan(&u.ID, &u.Email, &raw, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := json.Unmarshal(raw, &u.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by their email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, email, profile, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &raw, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if err := json.Unmarshal(raw, &u.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return u, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
