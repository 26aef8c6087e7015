package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/discordtext/backend/internal/config"
	"github.com/discordtext/backend/internal/db"
	"github.com/discordtext/backend/internal/handlers"
	"github.com/discordtext/backend/internal/httpserver"
)

const usage = "expected command: serve, migrate, generate, or interactive"

// Run bootstraps the discordtext application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "serve":
		return serve(ctx, args[1:])
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "generate":
		return generate(ctx, args[1:], os.Stdout)
	case "interactive":
		return interactive(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %s", args[0], usage)
	}
}

func newLogger(w io.Writer, level string, jsonFormat bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{AddSource: true, Level: lvl}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func serve(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	port := flags.Int("port", cfg.AppPort, "HTTP listen port")
	host := flags.String("host", cfg.Host, "HTTP listen host")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg.AppPort, cfg.Host = *port, *host
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(os.Stdout, cfg.LogLevel, true)
	slog.SetDefault(logger)

	var pool db.Pool
	if cfg.DatabaseURL != "" {
		pgPool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		pool = pgPool
	} else {
		logger.Info("no database configured, thumbnail history disabled")
	}

	deps, err := buildServerDependencies(ctx, pool, cfg)
	if err != nil {
		return err
	}
	deps.Logger = logger

	srv := httpserver.New(cfg.Addr(), handlers.NewRouter(deps))

	logger.Info("starting http server", "addr", srv.Addr(), "provider", cfg.MetadataProvider)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server", "cause", context.Cause(ctx))
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
