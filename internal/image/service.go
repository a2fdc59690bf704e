package image

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docswallet/service/internal/storage"
)

// uploadFolder is the fixed logical folder all objects are keyed under.
const uploadFolder = "docs-wallet"

const defaultContentType = "application/octet-stream"

// ErrNoFiles is returned when an upload request carries zero files.
var ErrNoFiles = errors.New("no files uploaded")

// Store is the metadata persistence boundary the service depends on.
type Store interface {
	InsertBatch(ctx context.Context, images []Image) error
	ListByOwner(ctx context.Context, email string) ([]Image, error)
	GetByIDAndOwner(ctx context.Context, id, email string) (*Image, error)
	DeleteByIDAndOwner(ctx context.Context, id, email string) (int64, error)
}

// Service orchestrates object-store uploads and metadata writes.
type Service struct {
	repo  Store
	store storage.Storage
}

// NewService creates a new image Service.
func NewService(repo Store, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

type uploadResult struct {
	key string
	url string
}

// Upload stores every file concurrently, then persists one metadata record
// per file as a single batch. The outcome is all-or-nothing: if any upload
// or the batch insert fails, compensating deletes remove every object
// already stored and no records are persisted.
func (s *Service) Upload(ctx context.Context, owner string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	results := make([]uploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("open %q: %w", fh.Filename, err)
			}
			defer f.Close()

			key := objectKey(fh.Filename)
			contentType := fh.Header.Get("Content-Type")
			if contentType == "" {
				contentType = defaultContentType
			}
			if err := s.store.Upload(gctx, key, f, fh.Size, contentType); err != nil {
				return fmt.Errorf("upload %q: %w", fh.Filename, err)
			}
			results[i] = uploadResult{key: key, url: s.store.PublicURL(key)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.compensate(ctx, results)
		return nil, fmt.Errorf("upload batch: %w", err)
	}

	now := time.Now()
	records := make([]Image, len(results))
	ids := make([]string, len(results))
	for i, res := range results {
		id := uuid.NewString()
		ids[i] = id
		records[i] = Image{
			ID:         id,
			OwnerEmail: owner,
			URL:        res.url,
			StorageKey: res.key,
			UploadedAt: now,
		}
	}
	if err := s.repo.InsertBatch(ctx, records); err != nil {
		s.compensate(ctx, results)
		return nil, fmt.Errorf("persist image metadata: %w", err)
	}

	return ids, nil
}

// List returns every image owned by email.
func (s *Service) List(ctx context.Context, owner string) ([]Image, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Delete removes the stored object first and the metadata record only
// after the remote delete succeeded; a failed remote delete leaves the
// record intact so metadata is never silently orphaned.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	img, err := s.repo.GetByIDAndOwner(ctx, id, owner)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, img.StorageKey); err != nil {
		return fmt.Errorf("remove stored object %q: %w", img.StorageKey, err)
	}

	n, err := s.repo.DeleteByIDAndOwner(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("delete image metadata: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// compensate best-effort deletes every object stored before a batch
// failure. Cleanup runs on a detached context so a client disconnect
// cannot abort it.
func (s *Service) compensate(ctx context.Context, results []uploadResult) {
	cctx := context.WithoutCancel(ctx)
	for _, res := range results {
		if res.key == "" {
			continue
		}
		if err := s.store.Delete(cctx, res.key); err != nil {
			log.Printf("image: compensating delete of %q failed: %v", res.key, err)
		}
	}
}

// objectKey builds a unique key under uploadFolder, keeping the original
// file extension.
func objectKey(filename string) string {
	return uploadFolder + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
