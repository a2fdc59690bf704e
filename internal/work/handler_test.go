package work

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/docswallet/service/internal/middleware"
)

func withClaim(r *http.Request, email string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserEmailKey, email))
}

func TestCreateHandler_IgnoresClientEmail(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(NewService(store))

	body := `{"email":"attacker@x.com","title":"piece"}`
	req := withClaim(httptest.NewRequest(http.MethodPost, "/works", strings.NewReader(body)), "a@x.com")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var created Work
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Email != "a@x.com" {
		t.Errorf("owner must come from the claim, got %q", created.Email)
	}
	if created.Data["title"] != "piece" {
		t.Errorf("payload not preserved: %v", created.Data)
	}
}

func TestCreateHandler_NoClaim(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(NewService(store))

	req := httptest.NewRequest(http.MethodPost, "/works", strings.NewReader(`{"title":"piece"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if len(store.works) != 0 {
		t.Error("unauthenticated create must not write")
	}
}

func TestListHandler_OwnerScoped(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	h := NewHandler(svc)

	if _, err := svc.Create(context.Background(), "b@x.com", map[string]interface{}{"title": "b1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := withClaim(httptest.NewRequest(http.MethodGet, "/works", nil), "a@x.com")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var works []Work
	if err := json.NewDecoder(rec.Body).Decode(&works); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(works) != 0 {
		t.Errorf("expected no works for another identity, got %d", len(works))
	}
}

func TestDeleteHandler_ByIDAndOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	h := NewHandler(svc)

	created, err := svc.Create(context.Background(), "a@x.com", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := chi.NewRouter()
	r.Delete("/works/{id}", h.Delete)

	// Mismatched id yields 404 and deletes nothing.
	req := withClaim(httptest.NewRequest(http.MethodDelete, "/works/bogus", nil), "a@x.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown id, got %d", rec.Code)
	}
	if len(store.works) != 1 {
		t.Error("mismatched delete must not remove records")
	}

	req = withClaim(httptest.NewRequest(http.MethodDelete, "/works/"+created.ID, nil), "a@x.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(store.works) != 0 {
		t.Error("record was not deleted")
	}
}
