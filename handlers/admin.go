// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/svg-gallery/auth"
	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/gallery"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/middleware"
	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/votes"
)

type AdminHandler struct {
	listing *listing.Client
	gallery *gallery.Gallery
	store   *votes.Store
	cfg     cliparse.Config
}

func NewAdminHandler(lc *listing.Client, g *gallery.Gallery, store *votes.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{listing: lc, gallery: g, store: store, cfg: cfg}
}

func (h *AdminHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(auth.AdminScope, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// InvalidateCache handles POST /admin/cache/invalidate
// With repo and path it drops that listing; without, it drops every listing
// and expired sessions.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	v := r.URL.Query()
	var purged int
	if v.Get("repo") != "" || v.Get("path") != "" {
		q := listing.Query{Repo: v.Get("repo"), Folder: v.Get("path"), Branch: v.Get("branch")}
		if _, err := q.Normalize(h.listing.DefaultBranch()); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		if h.listing.Invalidate(q) {
			purged = 1
		}
	} else {
		purged = h.listing.Purge()
		if n := h.gallery.Sweep(); n > 0 {
			slog.Info("expired gallery sessions swept", "count", n)
		}
	}

	slog.Info("listing cache invalidated", "repo", v.Get("repo"), "path", v.Get("path"), "purged", purged)

	middleware.JSONResponse(w, http.StatusOK, models.InvalidateResponse{Purged: purged})
}

// VoteEvents handles GET /admin/votes/{title}/events
func (h *AdminHandler) VoteEvents(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	title := r.PathValue("title")
	if err := votes.ValidateTitle(title); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.store.Events(r.Context(), title)
	if err != nil {
		slog.Error("failed to read vote events", "error", err, "title", title)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}
