// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/imgchain"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/middleware"
)

const (
	ImageSourceHeader  = "X-Image-Source"
	ImageAttemptHeader = "X-Image-Attempt"
	// ImageNextHeader carries the attempt to request after a failed one.
	ImageNextHeader = "X-Image-Next"
)

type ImageHandler struct {
	fetcher   imgchain.Fetcher
	templates imgchain.Templates
	cfg       cliparse.Config
}

func NewImageHandler(fetcher imgchain.Fetcher, cfg cliparse.Config) *ImageHandler {
	return &ImageHandler{
		fetcher: fetcher,
		templates: imgchain.Templates{
			LocalPrefix: imgchain.DefaultLocalPrefix,
			RawBase:     cfg.RawBaseURL,
			CDNBase:     cfg.CDNBaseURL,
		},
		cfg: cfg,
	}
}

// Serve handles GET /images?repo=&branch=&path=&name=[&attempt=N]
// Without attempt it walks the local, raw and CDN candidates and serves the
// first that loads. With attempt it tries only candidate N, so the page can
// show its progress between requests.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	owner, repo, err := listing.ParseRepo(v.Get("repo"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	p := strings.Trim(v.Get("path"), "/")
	if p == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "path is required")
		return
	}
	src := imgchain.Source{
		Owner:  owner,
		Repo:   repo,
		Branch: v.Get("branch"),
		Path:   p,
		Name:   v.Get("name"),
	}
	if src.Branch == "" {
		src.Branch = h.cfg.DefaultBranch
	}
	if src.Name == "" {
		src.Name = path.Base(p)
	}
	if dl := v.Get("download_url"); dl != "" && remoteAllowed(dl, h.cfg.RawBaseURL) {
		src.DownloadURL = dl
	}

	chain := h.templates.Chain(src)
	if raw := v.Get("attempt"); raw != "" {
		h.serveAttempt(w, r, chain, raw)
		return
	}

	img, err := imgchain.Resolve(r.Context(), chain, h.fetcher, func(a imgchain.Attempt) {
		if a.Err != nil {
			slog.Debug("image candidate failed", "name", src.Name, "url", a.URL, "attempt", a.Indicator(), "error", a.Err)
		}
	})
	w.Header().Set(ImageAttemptHeader, chain.Indicator())
	if errors.Is(err, imgchain.ErrExhausted) {
		slog.Warn("image unavailable", "repo", v.Get("repo"), "path", p, "attempts", chain.Total())
		middleware.ErrorResponse(w, http.StatusBadGateway, "Image unavailable")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Image request canceled")
		return
	}

	writeImage(w, chain.Current(), img)
}

func (h *ImageHandler) serveAttempt(w http.ResponseWriter, r *http.Request, chain *imgchain.Chain, raw string) {
	n, err := strconv.Atoi(raw)
	if err == nil {
		err = chain.Seek(n)
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "attempt must be between 1 and "+strconv.Itoa(chain.Total()))
		return
	}

	w.Header().Set(ImageAttemptHeader, chain.Indicator())
	source := chain.Current()
	img, err := imgchain.Step(r.Context(), chain, h.fetcher)
	switch {
	case err == nil:
		writeImage(w, source, img)
	case errors.Is(err, imgchain.ErrExhausted):
		slog.Warn("image unavailable", "url", source, "attempts", chain.Total())
		middleware.ErrorResponse(w, http.StatusBadGateway, "Image unavailable")
	case r.Context().Err() != nil:
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Image request canceled")
	default:
		slog.Debug("image candidate failed", "url", source, "attempt", n, "error", err)
		w.Header().Set(ImageNextHeader, strconv.Itoa(chain.Attempt()))
		middleware.ErrorResponse(w, http.StatusBadGateway, "Image candidate failed")
	}
}

func writeImage(w http.ResponseWriter, source string, img imgchain.Image) {
	w.Header().Set(ImageSourceHeader, source)
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Body)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	// served SVG must not run script when opened directly
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src data:")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Body)
}

// remoteAllowed reports whether u is an http(s) URL on the host of one of
// the configured bases.
func remoteAllowed(u string, bases ...string) bool {
	pu, err := url.Parse(u)
	if err != nil || (pu.Scheme != "http" && pu.Scheme != "https") || pu.Host == "" {
		return false
	}
	for _, b := range bases {
		pb, err := url.Parse(b)
		if err != nil || pb.Host == "" {
			continue
		}
		if strings.EqualFold(pb.Host, pu.Host) && pb.Scheme == pu.Scheme {
			return true
		}
	}
	return false
}
