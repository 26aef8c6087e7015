package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/discordtext/backend/internal/db"
	"github.com/discordtext/backend/internal/models"
	"github.com/discordtext/backend/internal/thumbnails"
)

// DefaultListLimit caps ListRecent when the caller passes no limit.
const DefaultListLimit = 50

// ThumbnailRepository exposes the saved thumbnail history.
type ThumbnailRepository interface {
	Record(ctx context.Context, saved models.SavedThumbnail) error
	ListRecent(ctx context.Context, limit int) ([]models.SavedThumbnail, error)
}

// PostgresThumbnailRepository stores the history in PostgreSQL.
type PostgresThumbnailRepository struct {
	pool db.Pool
}

// NewPostgresThumbnailRepository constructs a thumbnail repository backed by PostgreSQL.
func NewPostgresThumbnailRepository(pool db.Pool) *PostgresThumbnailRepository {
	return &PostgresThumbnailRepository{pool: pool}
}

// Record inserts a saved thumbnail row.
func (r *PostgresThumbnailRepository) Record(ctx context.Context, saved models.SavedThumbnail) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO saved_thumbnails (id, title, file_date, thumbnail_url, location, saved_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, saved.ID, saved.Title, saved.FileDate, saved.ThumbnailURL, saved.Location, saved.SavedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert saved thumbnail: %w", err)
	}

	return nil
}

// ListRecent returns saved thumbnails, newest first.
func (r *PostgresThumbnailRepository) ListRecent(ctx context.Context, limit int) ([]models.SavedThumbnail, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, file_date, thumbnail_url, location, saved_at
        FROM saved_thumbnails
        ORDER BY saved_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query saved thumbnails: %w", err)
	}
	defer rows.Close()

	saved := []models.SavedThumbnail{}
	for rows.Next() {
		var item models.SavedThumbnail
		if err := rows.Scan(&item.ID, &item.Title, &item.FileDate, &item.ThumbnailURL, &item.Location, &item.SavedAt); err != nil {
			return nil, fmt.Errorf("scan saved thumbnail: %w", err)
		}
		item.SavedAt = item.SavedAt.UTC()
		saved = append(saved, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved thumbnails: %w", err)
	}

	return saved, nil
}

var _ ThumbnailRepository = (*PostgresThumbnailRepository)(nil)
var _ thumbnails.History = (*PostgresThumbnailRepository)(nil)
