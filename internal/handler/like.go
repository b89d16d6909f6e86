package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"apexgarage/internal/httputil"
	"apexgarage/internal/model"
	"apexgarage/internal/service"
	"apexgarage/internal/transport/http/middleware"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, true)
}

func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, false)
}

func (h *LikeHandler) setLiked(w http.ResponseWriter, r *http.Request, liked bool) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.likeService.SetLiked(r.Context(), viewerID, targetID, liked); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotLikeSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] SetLiked handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update like state")
		}
		return
	}

	message := "Successfully unliked profile"
	if liked {
		message = "Successfully liked profile"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}
