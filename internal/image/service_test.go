package image

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeStorage records uploads and deletes; uploads of files whose name
// contains failOn fail.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	failUploads int32 // fail the nth upload (1-based), 0 disables
	uploadSeen  int32
	deleteErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	f.uploadSeen++
	fail := f.failUploads != 0 && f.uploadSeen == f.failUploads
	f.mu.Unlock()
	if fail {
		return errors.New("storage unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "http://store.test/" + key
}

func (f *fakeStorage) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeRepo is an in-memory metadata store.
type fakeRepo struct {
	mu        sync.Mutex
	images    map[string]Image
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{images: map[string]Image{}}
}

func (f *fakeRepo) InsertBatch(_ context.Context, images []Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, img := range images {
		f.images[img.ID] = img
	}
	return nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, email string) ([]Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Image{}
	for _, img := range f.images {
		if img.OwnerEmail == email {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByIDAndOwner(_ context.Context, id, email string) (*Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok || img.OwnerEmail != email {
		return nil, ErrNotFound
	}
	return &img, nil
}

func (f *fakeRepo) DeleteByIDAndOwner(_ context.Context, id, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok || img.OwnerEmail != email {
		return 0, nil
	}
	delete(f.images, id)
	return 1, nil
}

// makeFileHeaders builds real multipart file headers the way the HTTP
// layer would hand them to the service.
func makeFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return req.MultipartForm.File["files"]
}

func TestUpload_ZeroFiles(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	_, err := svc.Upload(context.Background(), "a@x.com", nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
	if store.stored() != 0 || len(repo.images) != 0 {
		t.Error("zero-file upload must not touch any store")
	}
}

func TestUpload_AllSucceed(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	files := makeFileHeaders(t, "one.jpg", "two.png", "three.pdf")
	ids, err := svc.Upload(context.Background(), "a@x.com", files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if store.stored() != 3 {
		t.Errorf("expected 3 stored objects, got %d", store.stored())
	}

	for _, id := range ids {
		img, err := repo.GetByIDAndOwner(context.Background(), id, "a@x.com")
		if err != nil {
			t.Fatalf("record %s not persisted: %v", id, err)
		}
		if img.OwnerEmail != "a@x.com" {
			t.Errorf("record %s owner = %q", id, img.OwnerEmail)
		}
		if !strings.HasPrefix(img.StorageKey, uploadFolder+"/") {
			t.Errorf("record %s key %q not under %q", id, img.StorageKey, uploadFolder)
		}
		if img.URL != store.PublicURL(img.StorageKey) {
			t.Errorf("record %s url %q does not match key", id, img.URL)
		}
		if img.UploadedAt.IsZero() || time.Since(img.UploadedAt) > time.Minute {
			t.Errorf("record %s has implausible timestamp %v", id, img.UploadedAt)
		}
	}
}

func TestUpload_OwnerIsolation(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	if _, err := svc.Upload(context.Background(), "a@x.com", makeFileHeaders(t, "a.jpg")); err != nil {
		t.Fatalf("upload for a: %v", err)
	}
	if _, err := svc.Upload(context.Background(), "b@x.com", makeFileHeaders(t, "b.jpg")); err != nil {
		t.Fatalf("upload for b: %v", err)
	}

	forA, _ := svc.List(context.Background(), "a@x.com")
	forB, _ := svc.List(context.Background(), "b@x.com")
	if len(forA) != 1 || len(forB) != 1 {
		t.Fatalf("expected one record each, got %d and %d", len(forA), len(forB))
	}
	if forA[0].OwnerEmail != "a@x.com" || forB[0].OwnerEmail != "b@x.com" {
		t.Error("list returned a record owned by another identity")
	}
}

func TestUpload_PartialFailureLeavesNothing(t *testing.T) {
	store := newFakeStorage()
	store.failUploads = 2
	repo := newFakeRepo()
	svc := NewService(repo, store)

	files := makeFileHeaders(t, "one.jpg", "two.jpg", "three.jpg")
	if _, err := svc.Upload(context.Background(), "a@x.com", files); err == nil {
		t.Fatal("expected upload to fail")
	}

	if len(repo.images) != 0 {
		t.Errorf("expected zero records after partial failure, got %d", len(repo.images))
	}
	if store.stored() != 0 {
		t.Errorf("expected compensating deletes to clear stored objects, %d remain", store.stored())
	}
}

func TestUpload_InsertFailureCompensates(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	repo.insertErr = errors.New("database down")
	svc := NewService(repo, store)

	files := makeFileHeaders(t, "one.jpg", "two.jpg")
	if _, err := svc.Upload(context.Background(), "a@x.com", files); err == nil {
		t.Fatal("expected upload to fail")
	}
	if store.stored() != 0 {
		t.Errorf("expected compensating deletes after insert failure, %d objects remain", store.stored())
	}
}

func TestDelete_RemovesObjectThenRecord(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	ids, err := svc.Upload(context.Background(), "a@x.com", makeFileHeaders(t, "one.jpg"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), "a@x.com", ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.stored() != 0 {
		t.Error("stored object was not removed")
	}
	if _, err := repo.GetByIDAndOwner(context.Background(), ids[0], "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Error("metadata record was not removed")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStorage())

	if err := svc.Delete(context.Background(), "a@x.com", "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_WrongOwner(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	ids, err := svc.Upload(context.Background(), "a@x.com", makeFileHeaders(t, "one.jpg"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), "b@x.com", ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a non-owner, got %v", err)
	}
	if store.stored() != 1 || len(repo.images) != 1 {
		t.Error("non-owner delete must leave everything intact")
	}
}

func TestDelete_RemoteFailureKeepsRecord(t *testing.T) {
	store := newFakeStorage()
	repo := newFakeRepo()
	svc := NewService(repo, store)

	ids, err := svc.Upload(context.Background(), "a@x.com", makeFileHeaders(t, "one.jpg"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	store.deleteErr = errors.New("storage unavailable")
	if err := svc.Delete(context.Background(), "a@x.com", ids[0]); err == nil {
		t.Fatal("expected delete to fail")
	}
	if _, err := repo.GetByIDAndOwner(context.Background(), ids[0], "a@x.com"); err != nil {
		t.Error("metadata record must survive a failed remote delete")
	}
}
