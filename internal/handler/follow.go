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

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.setFollowing(w, r, true)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollowing(w, r, false)
}

func (h *FollowHandler) setFollowing(w http.ResponseWriter, r *http.Request, following bool) {
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

	if err := h.followService.SetFollowing(r.Context(), viewerID, targetID, following); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] SetFollowing handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update follow state")
		}
		return
	}

	message := "Successfully unfollowed user"
	if following {
		message = "Successfully followed user"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.followService.GetFollowers(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] GetFollowers handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch followers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.followService.GetFollowing(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] GetFollowing handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
