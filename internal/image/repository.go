// Package image implements the authenticated upload-and-persist workflow
// for stored documents.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image is the metadata record for one stored object.
type Image struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"owner"`
	URL        string    `json:"url"`
	StorageKey string    `json:"storageKey"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ErrNotFound is returned when an image record does not exist for the
// addressed id and owner.
var ErrNotFound = errors.New("image not found")

// Repository handles image metadata persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new image Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertBatch writes all records inside one transaction: either every
// record lands or none does.
func (r *Repository) InsertBatch(ctx context.Context, images []Image) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, img := range images {
		_, err := tx.Exec(ctx,
			`INSERT INTO images (id, owner_email, url, storage_key, uploaded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			img.ID, img.OwnerEmail, img.URL, img.StorageKey, img.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("insert image %s: %w", img.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// ListByOwner returns every image record owned by email, in insertion order.
func (r *Repository) ListByOwner(ctx context.Context, email string) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_email, url, storage_key, uploaded_at
		 FROM images WHERE owner_email = $1
		 ORDER BY uploaded_at`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.OwnerEmail, &img.URL, &img.StorageKey, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return images, nil
}

// GetByIDAndOwner fetches the record whose id and owner both match.
func (r *Repository) GetByIDAndOwner(ctx context.Context, id, email string) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_email, url, storage_key, uploaded_at
		 FROM images WHERE id = $1 AND owner_email = $2`,
		id, email,
	).Scan(&img.ID, &img.OwnerEmail, &img.URL, &img.StorageKey, &img.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// DeleteByIDAndOwner removes the record whose id and owner both match and
// reports how many rows were affected.
func (r *Repository) DeleteByIDAndOwner(ctx context.Context, id, email string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM images WHERE id = $1 AND owner_email = $2`,
		id, email,
	)
	if err != nil {
		return 0, fmt.Errorf("delete image: %w", err)
	}
	return tag.RowsAffected(), nil
}
