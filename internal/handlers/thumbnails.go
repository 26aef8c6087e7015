package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/discordtext/backend/internal/logging"
	"github.com/discordtext/backend/internal/models"
	"github.com/discordtext/backend/internal/thumbnails"
)

// ThumbnailHandler saves thumbnails and lists the ones saved before.
type ThumbnailHandler struct {
	Saver   ThumbnailSaver
	History ThumbnailHistory
}

type saveThumbnailRequest struct {
	ThumbnailURL string `json:"thumbnailUrl" validate:"required"`
	Title        string `json:"title" validate:"required"`
	FileDate     string `json:"fileDate" validate:"required"`
}

type saveThumbnailResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

type listThumbnailsResponse struct {
	Thumbnails []models.SavedThumbnail `json:"thumbnails"`
}

// Save handles POST /api/save_thumbnail.
func (h ThumbnailHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req saveThumbnailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid save payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ThumbnailURL = strings.TrimSpace(req.ThumbnailURL)
	req.FileDate = strings.TrimSpace(req.FileDate)
	if errs, ok := requestValidator.Validate(req); !ok {
		logger.Warn("save thumbnail missing data", "fields", errs)
		respondError(ctx, w, http.StatusBadRequest, "Missing data")
		return
	}

	if h.Saver == nil {
		logger.Error("thumbnail saver unavailable")
		respondError(ctx, w, http.StatusServiceUnavailable, "thumbnail storage unavailable")
		return
	}

	saved, err := h.Saver.Save(ctx, thumbnails.Request{
		ThumbnailURL: req.ThumbnailURL,
		Title:        req.Title,
		FileDate:     req.FileDate,
	})
	switch {
	case errors.Is(err, thumbnails.ErrMissingData):
		respondError(ctx, w, http.StatusBadRequest, "Missing data")
		return
	case errors.Is(err, thumbnails.ErrDownloadFailed):
		respondError(ctx, w, http.StatusInternalServerError, "Failed to download image")
		return
	case err != nil:
		logger.Error("save thumbnail", "url", req.ThumbnailURL, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to save thumbnail")
		return
	}

	respondJSON(ctx, w, http.StatusOK, saveThumbnailResponse{
		Message: "Thumbnail saved",
		Path:    saved.Location,
	})
}

// List handles GET /api/thumbnails.
func (h ThumbnailHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.History == nil {
		respondError(ctx, w, http.StatusNotFound, "thumbnail history is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(ctx, w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	saved, err := h.History.ListRecent(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list saved thumbnails", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list thumbnails")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listThumbnailsResponse{Thumbnails: saved})
}
