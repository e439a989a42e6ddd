// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/gallery"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/middleware"
	"github.com/danielhkuo/svg-gallery/models"
)

// GalleryStateHeader carries the grid state on fragment responses.
const GalleryStateHeader = "X-Gallery-State"

type GalleryHandler struct {
	gallery  *gallery.Gallery
	renderer *gallery.Renderer
	cfg      cliparse.Config
}

func NewGalleryHandler(g *gallery.Gallery, renderer *gallery.Renderer, cfg cliparse.Config) *GalleryHandler {
	return &GalleryHandler{gallery: g, renderer: renderer, cfg: cfg}
}

// queryFrom reads repo, path and branch, falling back to configured defaults.
func (h *GalleryHandler) queryFrom(r *http.Request) (listing.Query, bool) {
	v := r.URL.Query()
	q := listing.Query{
		Repo:   v.Get("repo"),
		Folder: v.Get("path"),
		Branch: v.Get("branch"),
	}
	if q.Repo == "" && q.Folder == "" {
		q.Repo, q.Folder = h.cfg.DefaultRepo, h.cfg.DefaultFolder
	}
	if q.Branch == "" {
		q.Branch = h.cfg.DefaultBranch
	}
	return q, q.Repo != "" && q.Folder != ""
}

// Page handles GET /
func (h *GalleryHandler) Page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	q, ok := h.queryFrom(r)
	view := gallery.PageView{Query: q, HasQuery: ok, Extension: h.gallery.Extension()}
	status := http.StatusOK

	if !ok {
		view.Grid = gallery.PromptGrid()
	} else {
		s, err := h.gallery.Start(q)
		switch {
		case errors.Is(err, listing.ErrInvalidRepo), errors.Is(err, listing.ErrEmptyFolder):
			view.HasQuery = false
			view.Grid = gallery.PromptGrid()
			view.Grid.Message = err.Error()
			status = http.StatusBadRequest
		case err != nil:
			slog.Error("failed to start gallery session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start gallery")
			return
		default:
			view.Query = s.Query
			view.Grid = h.gallery.Grid(s)
			slog.Info("gallery session started", "session_id", s.ID, "repo", s.Query.Repo, "folder", s.Query.Folder, "branch", s.Query.Branch)
		}
	}

	writeHTML(w, status, func(buf *bytes.Buffer) error {
		return h.renderer.Page(buf, view)
	})
}

// Grid handles GET /gallery/{id}/grid
func (h *GalleryHandler) Grid(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.refresh(r, s)
	view := h.gallery.Grid(s)
	w.Header().Set(GalleryStateHeader, view.State.String())
	writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.renderer.Grid(buf, view)
	})
}

// Order handles GET /gallery/{id}/order
func (h *GalleryHandler) Order(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.refresh(r, s)
	cards := s.Cards()
	if cards == nil {
		cards = []models.Card{}
	}
	middleware.JSONResponse(w, http.StatusOK, models.OrderResponse{
		SessionID: s.ID,
		State:     s.State().String(),
		Frozen:    s.Frozen(),
		Cards:     cards,
	})
}

// End handles POST /gallery/{id}/end, sent when the page goes away.
func (h *GalleryHandler) End(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s, ok := h.gallery.Session(id); ok {
		slog.Debug("gallery session ended", "session_id", id, "started", s.Age())
	}
	h.gallery.End(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GalleryHandler) session(w http.ResponseWriter, r *http.Request) (*gallery.Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}
	s, ok := h.gallery.Session(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

func (h *GalleryHandler) refresh(r *http.Request, s *gallery.Session) {
	if err := h.gallery.Refresh(r.Context(), s); err != nil {
		slog.Warn("failed to refresh vote counts", "session_id", s.ID, "error", err)
	}
}

// writeHTML renders into a buffer first so template errors become a 500
// instead of a half-written page.
func writeHTML(w http.ResponseWriter, status int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error("failed to render template", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
