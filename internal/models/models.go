package models

import "time"

// SavedThumbnail records one thumbnail persisted by the save endpoint.
type SavedThumbnail struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FileDate     string    `json:"fileDate"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Location     string    `json:"location"`
	SavedAt      time.Time `json:"savedAt"`
}
