package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/discordtext/backend/internal/logging"
	"github.com/discordtext/backend/internal/videos"
)

// APIError is an error reported by the server in the response body. Its
// message is meant to be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the discordtext HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

type fetchRequest struct {
	URL    string `json:"url"`
	APIKey string `json:"apiKey"`
}

type saveRequest struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	Title        string `json:"title"`
	FileDate     string `json:"fileDate"`
}

type saveResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// FetchMetadata calls POST /api/process.
func (c *Client) FetchMetadata(ctx context.Context, url, apiKey string) (videos.Record, error) {
	var record videos.Record
	if err := c.post(ctx, "/api/process", fetchRequest{URL: url, APIKey: apiKey}, &record); err != nil {
		return videos.Record{}, err
	}
	return record, nil
}

// SaveThumbnail calls POST /api/save_thumbnail and returns where the server
// stored the image.
func (c *Client) SaveThumbnail(ctx context.Context, thumbnailURL, title, fileDate string) (string, error) {
	var resp saveResponse
	if err := c.post(ctx, "/api/save_thumbnail", saveRequest{ThumbnailURL: thumbnailURL, Title: title, FileDate: fileDate}, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
