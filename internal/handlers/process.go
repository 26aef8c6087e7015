package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/discordtext/backend/internal/logging"
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

// ProcessHandler resolves a video URL into the fields needed to build an
// announcement.
type ProcessHandler struct {
	Metadata MetadataProvider
	// KeyOptional accepts requests without an API key, for providers that
	// do not need one.
	KeyOptional bool
}

type processRequest struct {
	URL    string `json:"url" validate:"required"`
	APIKey string `json:"apiKey"`
}

type processResponse struct {
	videos.Record
	Message string `json:"message"`
}

// Process handles POST /api/process.
func (h ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid process payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	req.APIKey = strings.TrimSpace(req.APIKey)
	if _, ok := requestValidator.Validate(req); !ok {
		respondError(ctx, w, http.StatusBadRequest, "URL is required")
		return
	}
	if req.APIKey == "" && !h.KeyOptional {
		respondError(ctx, w, http.StatusBadRequest, "API Key is required")
		return
	}

	if h.Metadata == nil {
		logger.Error("metadata provider unavailable")
		respondError(ctx, w, http.StatusServiceUnavailable, "metadata provider unavailable")
		return
	}

	record, err := h.Metadata.Lookup(ctx, req.URL, req.APIKey)
	if err != nil {
		status, msg := lookupFailure(err)
		if status >= http.StatusInternalServerError {
			logger.Error("video lookup failed", "url", req.URL, "error", err)
		}
		respondError(ctx, w, status, msg)
		return
	}

	respondJSON(ctx, w, http.StatusOK, processResponse{
		Record:  record,
		Message: message.Render(record.Title, record.FormattedDate, record.SourceURL, message.StyleBlue),
	})
}

func lookupFailure(err error) (int, string) {
	var upstream *videos.UpstreamError
	switch {
	case errors.Is(err, videos.ErrMissingAPIKey):
		return http.StatusBadRequest, "API Key is required"
	case errors.Is(err, videos.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid YouTube URL"
	case errors.Is(err, videos.ErrVideoNotFound):
		return http.StatusNotFound, "Video not found"
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, fmt.Sprintf("YouTube API Error: %d", upstream.StatusCode)
	case errors.Is(err, videos.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "metadata provider unavailable"
	default:
		return http.StatusInternalServerError, "failed to fetch video metadata"
	}
}
