package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/discordtext/backend/internal/logging"
	"github.com/discordtext/backend/internal/message"
)

// PreviewHandler renders an announcement in any style, with an HTML preview.
type PreviewHandler struct{}

type previewRequest struct {
	Title         string `json:"title" validate:"required"`
	FormattedDate string `json:"formattedDate" validate:"required"`
	URL           string `json:"url" validate:"required"`
	Style         string `json:"style"`
}

type previewResponse struct {
	Style   message.Style `json:"style"`
	Message string        `json:"message"`
	HTML    string        `json:"html"`
}

// Preview handles POST /api/preview. Unknown styles render as blue.
func (PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid preview payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs, ok := requestValidator.Validate(req); !ok {
		respondError(ctx, w, http.StatusBadRequest, errs[0].Message)
		return
	}

	style, ok := message.ParseStyle(req.Style)
	if !ok {
		style = message.DefaultStyle
	}

	text := message.Render(req.Title, req.FormattedDate, req.URL, style)
	html, err := message.Preview(text)
	if err != nil {
		logger.Error("render preview", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to render preview")
		return
	}

	respondJSON(ctx, w, http.StatusOK, previewResponse{Style: style, Message: text, HTML: html})
}
