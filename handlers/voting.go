// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/svg-gallery/auth"
	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/middleware"
	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/votes"
)

// MaxBulkTitles bounds one bulk counter read.
const MaxBulkTitles = votes.MaxBulkTitles

const maxUserAgentLen = 200

type VotingHandler struct {
	store *votes.Store
	cfg   cliparse.Config
}

func NewVotingHandler(store *votes.Store, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{store: store, cfg: cfg}
}

// GetCounts handles GET /api/votes?title=a&title=b
// Without titles every stored counter is returned.
func (h *VotingHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	titles := r.URL.Query()["title"]
	if len(titles) > MaxBulkTitles {
		middleware.ErrorResponse(w, http.StatusBadRequest, "too many titles")
		return
	}
	for _, t := range titles {
		if err := votes.ValidateTitle(t); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	counts, err := h.store.GetCounts(r.Context(), titles)
	if err != nil {
		slog.Error("failed to read vote counts", "error", err, "titles", len(titles))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CountsResponse{Counts: counts})
}

// GetCount handles GET /api/votes/{title}
func (h *VotingHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	if err := votes.ValidateTitle(title); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.store.GetCount(r.Context(), title)
	if err != nil {
		slog.Error("failed to read vote count", "error", err, "title", title)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, count)
}

// Vote handles POST /api/votes/{title}/{direction}
// Every call is one increment; nothing dedups voters.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	dir := models.Direction(r.PathValue("direction"))

	if !dir.Valid() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "direction must be up or down")
		return
	}
	if err := votes.ValidateTitle(title); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}
	voter := votes.Voter{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt),
		UserAgent: ua,
	}

	count, err := h.store.Increment(r.Context(), title, dir, voter)
	if errors.Is(err, votes.ErrInvalidTitle) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to record vote", "error", err, "title", title, "direction", dir)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded", "title", title, "direction", dir, "up", count.UpCount, "down", count.DownCount)

	middleware.JSONResponse(w, http.StatusOK, count)
}
