package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/docswallet/service/internal/middleware"
	"github.com/docswallet/service/internal/response"
)

// Handler holds HTTP handlers for user endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register godoc
//
//	@Summary		Register user
//	@Description	Create a user record. Registering an already-known email is a no-op returning a notice.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		map[string]interface{}	true	"User object, must contain email"
//	@Success		200		{object}	User
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}
	email, _ := body["email"].(string)
	if email == "" {
		response.BadRequest(w, "Email is required.")
		return
	}
	delete(body, "email")

	u, created, err := h.svc.Register(r.Context(), email, body)
	if err != nil {
		log.Printf("user: register failed: %v", err)
		response.InternalError(w, "Failed to register user.")
		return
	}
	if !created {
		response.OK(w, map[string]string{"message": "User already exists"})
		return
	}
	response.OK(w, u)
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the record of the authenticated caller.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	User
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/user [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	u, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		log.Printf("user: get failed: %v", err)
		response.InternalError(w, "Failed to fetch user.")
		return
	}
	response.OK(w, u)
}
