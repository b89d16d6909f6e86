package handler

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"apexgarage/internal/httputil"
	"apexgarage/internal/model"
	"apexgarage/internal/service"
	"apexgarage/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

type uploadFunc func(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)

// UploadTuneImage accepts a multipart car photo and returns its public URL.
func (h *MediaHandler) UploadTuneImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.mediaService.UploadTuneImage)
}

// UploadAvatar accepts a multipart avatar and returns its public URL.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.mediaService.UploadAvatar)
}

func (h *MediaHandler) upload(w http.ResponseWriter, r *http.Request, fn uploadFunc) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(model.MaxTuneImageSizeBytes); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	result, err := fn(r.Context(), userID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, err.Error())
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, err.Error())
		default:
			log.Printf("[ERROR] Upload handler: %v", err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
