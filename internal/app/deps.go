package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/discordtext/backend/internal/cli"
	"github.com/discordtext/backend/internal/client"
	"github.com/discordtext/backend/internal/clipboard"
	"github.com/discordtext/backend/internal/config"
	"github.com/discordtext/backend/internal/controller"
	"github.com/discordtext/backend/internal/credentials"
	"github.com/discordtext/backend/internal/db"
	"github.com/discordtext/backend/internal/handlers"
	"github.com/discordtext/backend/internal/middleware"
	"github.com/discordtext/backend/internal/repositories"
	"github.com/discordtext/backend/internal/storage"
	"github.com/discordtext/backend/internal/thumbnails"
	"github.com/discordtext/backend/internal/videos"
)

const rateLimitTTL = 10 * time.Minute

// buildServerDependencies wires together concrete implementations used by the
// HTTP handlers. pool may be nil, which disables the thumbnail history.
func buildServerDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	deps := handlers.Dependencies{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, rateLimitTTL),
	}

	switch cfg.MetadataProvider {
	case config.ProviderYTDLP:
		deps.Metadata = videos.NewYTDLPProvider(cfg.YTDLPPath, cfg.YTDLPTimeout)
		deps.KeyOptional = true
	default:
		deps.Metadata = videos.NewYouTubeProvider(cfg.YouTubeEndpoint)
	}

	var store storage.Storage
	if cfg.ObjectStore.Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure s3 storage: %w", err)
		}
		store = s3Store
	} else {
		store = storage.NewLocalStorage(cfg.ThumbnailDir)
	}

	var history thumbnails.History
	if pool != nil {
		repo := repositories.NewPostgresThumbnailRepository(pool)
		history = repo
		deps.History = repo
	}

	deps.Saver = thumbnails.NewSaver(nil, store, history, cfg.ThumbnailTimeout)
	return deps, nil
}

// clientDependencies holds what a terminal front end needs.
type clientDependencies struct {
	Controller *controller.Controller
	Session    *cli.Session
	Store      *credentials.SQLiteStore
	APIKey     string
}

func (d clientDependencies) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

// buildClientDependencies opens the credential store and wires the controller
// to the API client and a terminal session writing to out.
func buildClientDependencies(ctx context.Context, cfg config.Config, out, progress io.Writer, pretty bool, clip controller.Clipboard, logger *slog.Logger) (clientDependencies, error) {
	store, err := credentials.Open(cfg.StatePath)
	if err != nil {
		return clientDependencies{}, err
	}

	apiKey, err := store.Load(ctx, credentials.APIKeyName)
	if err != nil {
		logger.Warn("load saved api key", "error", err)
	}

	if clip == nil {
		clip = clipboard.System{}
	}

	api := client.New(cfg.ServerURL, nil)
	session := cli.NewSession(cli.NewTerminalView(out, pretty, logger), progress)
	ctrl := controller.New(controller.Deps{
		Fetcher:     api,
		Saver:       api,
		Credentials: store,
		Clipboard:   clip,
		View:        session,
		Logger:      logger,
	})
	session.Attach(ctrl)

	return clientDependencies{Controller: ctrl, Session: session, Store: store, APIKey: apiKey}, nil
}
