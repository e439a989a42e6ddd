// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	// Gallery defaults used when the page query omits them
	DefaultRepo   string
	DefaultFolder string
	DefaultBranch string
	Extension     string

	// Remote endpoints
	ListingBaseURL string
	RawBaseURL     string
	CDNBaseURL     string
	GitHubToken    string
	AssetsDir      string

	ListingTTL     time.Duration
	SessionTTL     time.Duration
	ResolveTimeout time.Duration
	RetryMax       int
}

const (
	DefaultPort           = 3318
	DefaultBranch         = "main"
	DefaultExtension      = ".svg"
	DefaultListingBaseURL = "https://api.github.com"
	DefaultRawBaseURL     = "https://raw.githubusercontent.com"
	DefaultCDNBaseURL     = "https://cdn.jsdelivr.net/gh"
	DefaultAssetsDir      = "public/assets"
	DefaultListingTTL     = time.Minute
	DefaultSessionTTL     = 30 * time.Minute
	DefaultResolveTimeout = 30 * time.Second
	DefaultRetryMax       = 2
)

// LoadDotEnv loads environment files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("svg-gallery", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.GitHubToken, "github-token", "", "Listing API token (prefer env)")

	// Gallery
	fs.StringVar(&cfg.DefaultRepo, "repo", "", "Default repository (owner/name)")
	fs.StringVar(&cfg.DefaultFolder, "path", "", "Default folder path")
	fs.StringVar(&cfg.DefaultBranch, "branch", "", "Default branch")
	fs.StringVar(&cfg.Extension, "ext", "", "File extension to list")
	fs.StringVar(&cfg.ListingBaseURL, "listing-url", "", "Listing API base URL")
	fs.StringVar(&cfg.RawBaseURL, "raw-url", "", "Raw content base URL")
	fs.StringVar(&cfg.CDNBaseURL, "cdn-url", "", "CDN base URL")
	fs.StringVar(&cfg.AssetsDir, "assets", "", "Local assets directory")
	fs.DurationVar(&cfg.ListingTTL, "listing-ttl", 0, "Listing cache TTL")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Gallery session TTL")
	fs.DurationVar(&cfg.ResolveTimeout, "resolve-timeout", 0, "Gallery resolve timeout")
	fs.IntVar(&cfg.RetryMax, "retry-max", -1, "Retries for idempotent remote reads")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	fillString(&cfg.DefaultRepo, "GALLERY_REPO", "")
	fillString(&cfg.DefaultFolder, "GALLERY_PATH", "")
	fillString(&cfg.DefaultBranch, "GALLERY_BRANCH", DefaultBranch)
	fillString(&cfg.Extension, "GALLERY_EXT", DefaultExtension)
	fillString(&cfg.ListingBaseURL, "LISTING_BASE_URL", DefaultListingBaseURL)
	fillString(&cfg.RawBaseURL, "RAW_BASE_URL", DefaultRawBaseURL)
	fillString(&cfg.CDNBaseURL, "CDN_BASE_URL", DefaultCDNBaseURL)
	fillString(&cfg.AssetsDir, "ASSETS_DIR", DefaultAssetsDir)

	var err error
	if cfg.ListingTTL, err = fillDuration(cfg.ListingTTL, "LISTING_TTL", DefaultListingTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = fillDuration(cfg.SessionTTL, "SESSION_TTL", DefaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ResolveTimeout, err = fillDuration(cfg.ResolveTimeout, "RESOLVE_TIMEOUT", DefaultResolveTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RetryMax < 0 {
		if cfg.RetryMax, err = envInt("RETRY_MAX", DefaultRetryMax); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func fillString(dst *string, key, def string) {
	if *dst == "" {
		*dst = envString(key, def)
	}
}

func fillDuration(cur time.Duration, key string, def time.Duration) (time.Duration, error) {
	if cur > 0 {
		return cur, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
