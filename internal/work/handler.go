package work

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docswallet/service/internal/middleware"
	"github.com/docswallet/service/internal/response"
)

// Handler holds HTTP handlers for work endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new work Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create godoc
//
//	@Summary		Create work
//	@Description	Persists a work record owned by the authenticated caller.
//	@Tags			works
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	Work
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/works [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}
	delete(body, "email")

	created, err := h.svc.Create(r.Context(), email, body)
	if err != nil {
		log.Printf("work: create failed: %v", err)
		response.InternalError(w, "Failed to create work.")
		return
	}
	response.Created(w, created)
}

// List godoc
//
//	@Summary		List works
//	@Description	Returns every work record owned by the authenticated caller.
//	@Tags			works
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		Work
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/works [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	works, err := h.svc.List(r.Context(), email)
	if err != nil {
		log.Printf("work: list failed: %v", err)
		response.InternalError(w, "Failed to fetch works.")
		return
	}
	response.OK(w, works)
}

// Delete godoc
//
//	@Summary		Delete work
//	@Description	Removes the work whose id and owner both match the request.
//	@Tags			works
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Work id"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/works/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), email, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Work not found.")
			return
		}
		log.Printf("work: delete failed: %v", err)
		response.InternalError(w, "Failed to delete work.")
		return
	}

	response.OK(w, map[string]string{"message": "Work deleted successfully."})
}
