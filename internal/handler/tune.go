package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"apexgarage/internal/httputil"
	"apexgarage/internal/model"
	"apexgarage/internal/service"
	"apexgarage/internal/transport/http/middleware"
)

type TuneHandler struct {
	tuneService *service.TuneService
}

func NewTuneHandler(tuneService *service.TuneService) *TuneHandler {
	return &TuneHandler{
		tuneService: tuneService,
	}
}

func (h *TuneHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateTuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	tune, err := h.tuneService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCarNameRequired):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] CreateTune handler: %v", err)
			httputil.WriteInternalError(w, "Failed to save tune")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, tune)
}

func (h *TuneHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tuneID := chi.URLParam(r, "id")
	if tuneID == "" {
		httputil.WriteBadRequest(w, "Invalid tune ID")
		return
	}

	tune, err := h.tuneService.GetByID(r.Context(), tuneID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTuneNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] GetTune handler: %v", err)
			httputil.WriteInternalError(w, "Failed to fetch tune")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tune)
}

func (h *TuneHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	tuneID := chi.URLParam(r, "id")
	if tuneID == "" {
		httputil.WriteBadRequest(w, "Invalid tune ID")
		return
	}

	var req model.CreateTuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	tune, err := h.tuneService.Update(r.Context(), userID, tuneID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTuneNotFound):
			httputil.WriteNotFound(w, err.Error())
		case errors.Is(err, model.ErrNotTuneOwner):
			httputil.WriteForbidden(w, err.Error())
		case errors.Is(err, model.ErrCarNameRequired):
			httputil.WriteBadRequest(w, err.Error())
		default:
			log.Printf("[ERROR] UpdateTune handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update tune")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tune)
}

func (h *TuneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	tuneID := chi.URLParam(r, "id")
	if tuneID == "" {
		httputil.WriteBadRequest(w, "Invalid tune ID")
		return
	}

	if err := h.tuneService.Delete(r.Context(), userID, tuneID); err != nil {
		switch {
		case errors.Is(err, model.ErrTuneNotFound):
			httputil.WriteNotFound(w, err.Error())
		case errors.Is(err, model.ErrNotTuneOwner):
			httputil.WriteForbidden(w, err.Error())
		default:
			log.Printf("[ERROR] DeleteTune handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete tune")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Tune deleted"})
}

// GetUserTunes lists a user's garage.
func (h *TuneHandler) GetUserTunes(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.tuneService.GetGarage(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] GetUserTunes handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch garage")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Search finds tunes by car name prefix.
func (h *TuneHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit < 1 || parsedLimit > 100 {
			httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
			return
		}
		limit = parsedLimit
	}

	result, err := h.tuneService.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("[ERROR] SearchTunes handler: %v", err)
		httputil.WriteInternalError(w, "Failed to search tunes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetFeed assembles the viewer's feed.
func (h *TuneHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.tuneService.GetFeed(r.Context(), viewerID)
	if err != nil {
		log.Printf("[ERROR] GetFeed handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
