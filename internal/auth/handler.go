// Package auth exposes credential issuance for the API.
package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/docswallet/service/internal/response"
	"github.com/docswallet/service/internal/token"
)

// Handler holds the HTTP handler for token issuance.
type Handler struct {
	tokens *token.Service
}

// NewHandler creates a new auth Handler.
func NewHandler(tokens *token.Service) *Handler {
	return &Handler{tokens: tokens}
}

// IssueToken godoc
//
//	@Summary		Issue credential
//	@Description	Signs the posted identity object into a bearer token valid for one hour.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		map[string]interface{}	true	"Identity fields, must contain email"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/jwt [post]
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}
	email, _ := payload["email"].(string)
	if email == "" {
		response.BadRequest(w, "Email is required.")
		return
	}

	tok, err := h.tokens.Issue(payload)
	if err != nil {
		log.Printf("auth: token issuance failed: %v", err)
		response.InternalError(w, "Failed to issue token.")
		return
	}

	response.OK(w, map[string]string{"token": tok})
}
