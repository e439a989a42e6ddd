// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/editor"
	"github.com/danielhkuo/svg-gallery/gallery"
	"github.com/danielhkuo/svg-gallery/middleware"
	"github.com/danielhkuo/svg-gallery/models"
)

type EditorHandler struct {
	editor   *editor.Editor
	renderer *gallery.Renderer
	cfg      cliparse.Config
}

func NewEditorHandler(e *editor.Editor, renderer *gallery.Renderer, cfg cliparse.Config) *EditorHandler {
	return &EditorHandler{editor: e, renderer: renderer, cfg: cfg}
}

// Page handles GET /editor?url=&title=
// Load failures are rendered on the page, not returned as errors.
func (h *EditorHandler) Page(w http.ResponseWriter, r *http.Request) {
	u := strings.TrimSpace(r.URL.Query().Get("url"))
	view := gallery.EditorView{Title: r.URL.Query().Get("title"), URL: u}
	if view.Title == "" {
		view.Title = "SVG"
	}

	switch {
	case u == "":
		view.Error = "SVG URL not found."
	case !remoteAllowed(u, h.cfg.RawBaseURL, h.cfg.CDNBaseURL, h.cfg.ListingBaseURL):
		view.Error = "SVG URL is not on an allowed host."
	default:
		code, err := h.editor.Load(r.Context(), u)
		var le *editor.LoadError
		switch {
		case errors.As(err, &le):
			view.Error = "Error loading SVG: " + http.StatusText(le.StatusCode)
		case err != nil:
			slog.Warn("failed to load svg for editing", "url", u, "error", err)
			view.Error = "Failed to load SVG."
		default:
			view.Code = code
			if p, err := editor.Preview(code); err == nil {
				view.Preview = template.HTML(p.Markup)
			}
		}
	}

	writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.renderer.Editor(buf, view)
	})
}

// Preview handles POST /editor/preview
func (h *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	resp, err := editor.Preview(req.Code)
	if errors.Is(err, editor.ErrNoSVG) {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
