package image

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docswallet/service/internal/middleware"
	"github.com/docswallet/service/internal/response"
)

// maxUploadMemory caps how much of a multipart body is held in memory;
// larger files spill to temp storage.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload godoc
//
//	@Summary		Upload images
//	@Description	Uploads one or more files to object storage and records metadata for each.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			files	formData	file	true	"Files to upload"
//	@Success		201		{object}	map[string]interface{}
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	var files []*multipart.FileHeader
	if err := r.ParseMultipartForm(maxUploadMemory); err == nil && r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}

	ids, err := h.svc.Upload(r.Context(), email, files)
	if err != nil {
		if errors.Is(err, ErrNoFiles) {
			response.BadRequest(w, "No files uploaded.")
			return
		}
		log.Printf("image: upload failed: %v", err)
		response.InternalError(w, "Failed to upload files.")
		return
	}

	response.Created(w, map[string]interface{}{
		"message":     "Images uploaded successfully.",
		"metadataIds": ids,
	})
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns every image record owned by the authenticated caller.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		Image
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	images, err := h.svc.List(r.Context(), email)
	if err != nil {
		log.Printf("image: list failed: %v", err)
		response.InternalError(w, "Failed to fetch images.")
		return
	}
	response.OK(w, images)
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Removes the stored object, then the metadata record. Only the owner may delete an image.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Image id"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	if email == "" {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), email, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Image not found.")
			return
		}
		log.Printf("image: delete failed: %v", err)
		response.InternalError(w, "Failed to delete image.")
		return
	}

	response.OK(w, map[string]string{"message": "Image deleted successfully."})
}
