// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/editor"
	"github.com/danielhkuo/svg-gallery/gallery"
	"github.com/danielhkuo/svg-gallery/handlers"
	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/imgchain"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/middleware"
	"github.com/danielhkuo/svg-gallery/votes"
)

// Router is the configured mux plus the long-lived services behind it.
type Router struct {
	*http.ServeMux

	Gallery *gallery.Gallery
	Listing *listing.Client
}

func NewRouter(db *sql.DB, cfg cliparse.Config) (*Router, error) {
	mux := http.NewServeMux()

	// Shared services
	client := httpx.New(httpx.Options{RetryMax: cfg.RetryMax, Logger: slog.Default()})
	listingClient := listing.NewClient(listing.Options{
		BaseURL:       cfg.ListingBaseURL,
		Token:         cfg.GitHubToken,
		Extension:     cfg.Extension,
		DefaultBranch: cfg.DefaultBranch,
		TTL:           cfg.ListingTTL,
		HTTP:          client,
	})
	store := votes.NewStore(db)
	g := gallery.New(listingClient, store, gallery.Options{
		SessionTTL:     cfg.SessionTTL,
		ResolveTimeout: cfg.ResolveTimeout,
	})
	renderer, err := gallery.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// Initialize handlers
	galleryHandler := handlers.NewGalleryHandler(g, renderer, cfg)
	votingHandler := handlers.NewVotingHandler(store, cfg)
	imageHandler := handlers.NewImageHandler(imgchain.NewHTTPFetcher(imgchain.DefaultLocalPrefix, cfg.AssetsDir, client), cfg)
	editorHandler := handlers.NewEditorHandler(editor.New(client), renderer, cfg)
	adminHandler := handlers.NewAdminHandler(listingClient, g, store, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Gallery page and its session endpoints
	mux.HandleFunc("GET /{$}", middleware.WithLogging(galleryHandler.Page))
	mux.HandleFunc("GET /gallery/{id}/grid", middleware.WithLogging(galleryHandler.Grid))
	mux.HandleFunc("GET /gallery/{id}/order", middleware.WithLogging(galleryHandler.Order))
	mux.HandleFunc("POST /gallery/{id}/end", middleware.WithLogging(galleryHandler.End))

	// Votes (public)
	mux.HandleFunc("GET /api/votes", middleware.WithLogging(votingHandler.GetCounts))
	mux.HandleFunc("GET /api/votes/{title}", middleware.WithLogging(votingHandler.GetCount))
	mux.HandleFunc("POST /api/votes/{title}/{direction}", middleware.WithLogging(votingHandler.Vote))

	// Images and editor
	mux.HandleFunc("GET /images", middleware.WithLogging(imageHandler.Serve))
	mux.HandleFunc("GET /editor", middleware.WithLogging(editorHandler.Page))
	mux.HandleFunc("POST /editor/preview", middleware.WithLogging(editorHandler.Preview))

	// Admin operations (require X-Admin-Key)
	mux.HandleFunc("POST /admin/cache/invalidate", middleware.WithLogging(adminHandler.InvalidateCache))
	mux.HandleFunc("GET /admin/votes/{title}/events", middleware.WithLogging(adminHandler.VoteEvents))

	// Local copies of the assets, the primary image source
	if cfg.AssetsDir != "" {
		mux.Handle("GET "+imgchain.DefaultLocalPrefix, http.StripPrefix(imgchain.DefaultLocalPrefix, http.FileServer(http.Dir(cfg.AssetsDir))))
	}

	return &Router{ServeMux: mux, Gallery: g, Listing: listingClient}, nil
}

// Close cancels every gallery session and waits for them to stop.
func (r *Router) Close() {
	r.Gallery.Close()
}
