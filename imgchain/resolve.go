// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imgchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/danielhkuo/svg-gallery/httpx"
)

const maxImageBytes = 4 << 20

var (
	ErrExhausted = errors.New("all image sources failed")
	ErrNotFound  = errors.New("image not found")
)

// Image is a loaded candidate.
type Image struct {
	Body        []byte
	ContentType string
}

// Fetcher loads one candidate URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

// Attempt is reported before each candidate is tried, and again with Err
// set when it failed.
type Attempt struct {
	N     int
	Total int
	URL   string
	Err   error
}

func (a Attempt) Indicator() string {
	return fmt.Sprintf("attempt %d of %d", a.N, a.Total)
}

// Resolve drives c from its current candidate until one loads or none are
// left. observe may be nil.
func Resolve(ctx context.Context, c *Chain, f Fetcher, observe func(Attempt)) (Image, error) {
	if observe == nil {
		observe = func(Attempt) {}
	}
	if c.Phase() == Loaded {
		return Image{}, fmt.Errorf("chain already loaded %s", c.Current())
	}
	if c.Phase() == Failed {
		return Image{}, ErrExhausted
	}

	var lastErr error
	for {
		a := Attempt{N: c.Attempt(), Total: c.Total(), URL: c.Current()}
		observe(a)

		img, err := f.Fetch(ctx, a.URL)
		if err == nil {
			c.Succeed()
			return img, nil
		}
		a.Err = err
		observe(a)
		lastErr = err
		slog.Debug("image candidate failed", "url", a.URL, "attempt", a.Indicator(), "error", err)

		if ctx.Err() != nil {
			c.abort()
			return Image{}, ctx.Err()
		}
		if !c.Fail() {
			return Image{}, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
		}
	}
}

// Step tries only the current candidate. On failure the chain moves to the
// next candidate and the fetch error is returned; when none is left the
// error wraps ErrExhausted.
func Step(ctx context.Context, c *Chain, f Fetcher) (Image, error) {
	if c.Phase() != Loading {
		return Image{}, fmt.Errorf("chain is %s", c.Phase())
	}
	img, err := f.Fetch(ctx, c.Current())
	if err == nil {
		c.Succeed()
		return img, nil
	}
	if ctx.Err() != nil {
		c.abort()
		return Image{}, ctx.Err()
	}
	if !c.Fail() {
		return Image{}, fmt.Errorf("%w: %w", ErrExhausted, err)
	}
	return Image{}, err
}

// HTTPFetcher serves candidates under LocalPrefix from the Dir filesystem
// and everything else over HTTP.
type HTTPFetcher struct {
	LocalPrefix string
	Dir         fs.FS
	HTTP        *retryablehttp.Client
}

// NewHTTPFetcher serves local candidates from dir; an empty dir disables
// them so the chain moves straight to the remote candidates.
func NewHTTPFetcher(localPrefix, dir string, client *retryablehttp.Client) *HTTPFetcher {
	f := &HTTPFetcher{LocalPrefix: localPrefix, HTTP: client}
	if dir != "" {
		f.Dir = os.DirFS(dir)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u string) (Image, error) {
	if f.LocalPrefix != "" && strings.HasPrefix(u, f.LocalPrefix) {
		return f.fetchLocal(strings.TrimPrefix(u, f.LocalPrefix))
	}

	body, header, err := httpx.Get(ctx, f.HTTP, u, http.Header{"Accept": {"image/svg+xml,image/*;q=0.8"}}, maxImageBytes)
	if err != nil {
		return Image{}, err
	}
	return Image{Body: body, ContentType: contentType(u, header.Get("Content-Type"), body)}, nil
}

func (f *HTTPFetcher) fetchLocal(escaped string) (Image, error) {
	if f.Dir == nil {
		return Image{}, ErrNotFound
	}
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return Image{}, err
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if !fs.ValidPath(name) || name == "." {
		return Image{}, ErrNotFound
	}

	body, err := fs.ReadFile(f.Dir, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Image{}, ErrNotFound
	}
	if err != nil {
		return Image{}, err
	}
	return Image{Body: body, ContentType: contentType(name, "", body)}, nil
}

// contentType prefers the extension because raw-content hosts serve SVG as
// text/plain.
func contentType(name, reported string, body []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(stripQuery(name)))); ct != "" {
		return ct
	}
	if reported != "" {
		return reported
	}
	return http.DetectContentType(body)
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
