package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderYouTube = "youtube"
	ProviderYTDLP   = "yt-dlp"
)

// Config captures the runtime configuration for both the API server and the
// terminal client.
type Config struct {
	Host     string
	AppPort  int
	LogLevel string

	MetadataProvider string
	YouTubeEndpoint  string
	YTDLPPath        string
	YTDLPTimeout     time.Duration

	ThumbnailDir     string
	ThumbnailTimeout time.Duration
	ObjectStore      ObjectStoreConfig

	DatabaseURL  string
	MigrationDir string

	RateLimit      RateLimitConfig
	AllowedOrigins []string

	ServerURL string
	StatePath string
}

// ObjectStoreConfig selects S3-compatible storage for saved thumbnails. An
// empty bucket keeps thumbnails on the local disk.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Enabled reports whether thumbnails should be uploaded to object storage.
func (c ObjectStoreConfig) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// RateLimitConfig bounds API calls per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Load reads configuration from environment variables, applying defaults
// suitable for running everything on one machine.
func Load() (Config, error) {
	cfg := Config{
		Host:             getString("DISCORDTEXT_HOST", ""),
		AppPort:          getInt("DISCORDTEXT_PORT", 5000),
		LogLevel:         getString("DISCORDTEXT_LOG_LEVEL", "info"),
		MetadataProvider: strings.ToLower(getString("DISCORDTEXT_METADATA_PROVIDER", ProviderYouTube)),
		YouTubeEndpoint:  getString("DISCORDTEXT_YOUTUBE_ENDPOINT", ""),
		YTDLPPath:        getString("DISCORDTEXT_YTDLP_PATH", "yt-dlp"),
		YTDLPTimeout:     getDuration("DISCORDTEXT_YTDLP_TIMEOUT", 30*time.Second),
		ThumbnailDir:     getString("DISCORDTEXT_THUMBNAIL_DIR", "downloaded_thumbnails"),
		ThumbnailTimeout: getDuration("DISCORDTEXT_THUMBNAIL_TIMEOUT", 30*time.Second),
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("DISCORDTEXT_S3_BUCKET", ""),
			Region:        getString("DISCORDTEXT_S3_REGION", "us-east-1"),
			Endpoint:      getString("DISCORDTEXT_S3_ENDPOINT", ""),
			PublicBaseURL: getString("DISCORDTEXT_S3_PUBLIC_BASE_URL", ""),
		},
		DatabaseURL:  getString("DISCORDTEXT_DATABASE_URL", ""),
		MigrationDir: getString("DISCORDTEXT_MIGRATIONS", "migrations"),
		RateLimit: RateLimitConfig{
			Requests: getInt("DISCORDTEXT_RATE_LIMIT_REQUESTS", 30),
			Window:   getDuration("DISCORDTEXT_RATE_LIMIT_WINDOW", time.Minute),
			Burst:    getInt("DISCORDTEXT_RATE_LIMIT_BURST", 10),
		},
		AllowedOrigins: getList("DISCORDTEXT_ALLOWED_ORIGINS", nil),
		ServerURL:      strings.TrimSuffix(getString("DISCORDTEXT_SERVER_URL", "http://localhost:5000"), "/"),
		StatePath:      getString("DISCORDTEXT_STATE_PATH", defaultStatePath()),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	switch c.MetadataProvider {
	case ProviderYouTube, ProviderYTDLP:
	default:
		return fmt.Errorf("invalid metadata provider %q: must be %s or %s", c.MetadataProvider, ProviderYouTube, ProviderYTDLP)
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("invalid port %d", c.AppPort)
	}
	if strings.TrimSpace(c.ThumbnailDir) == "" && !c.ObjectStore.Enabled() {
		return fmt.Errorf("thumbnail directory or s3 bucket is required")
	}
	return nil
}

// Addr returns the listen address for the API server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.AppPort)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "discordtext.db"
	}
	return filepath.Join(dir, "discordtext", "state.db")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
