// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package listing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/danielhkuo/svg-gallery/cache"
	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/models"
)

const maxListingBytes = 8 << 20

// Query identifies one folder listing.
type Query struct {
	Repo   string // owner/name
	Folder string
	Branch string
}

// ParseRepo splits "owner/name" into its two non-empty segments.
func ParseRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidRepo
	}
	return parts[0], parts[1], nil
}

// Normalize trims the query, validates it and fills the branch default.
func (q Query) Normalize(defaultBranch string) (Query, error) {
	q.Repo = strings.TrimSpace(q.Repo)
	q.Folder = strings.Trim(strings.TrimSpace(q.Folder), "/")
	q.Branch = strings.TrimSpace(q.Branch)
	if _, _, err := ParseRepo(q.Repo); err != nil {
		return Query{}, err
	}
	if q.Folder == "" {
		return Query{}, ErrEmptyFolder
	}
	if q.Branch == "" {
		q.Branch = defaultBranch
	}
	return q, nil
}

// Key is the cache key of a normalized query.
func (q Query) Key() string {
	return q.Repo + "\x00" + q.Folder + "\x00" + q.Branch
}

type Options struct {
	BaseURL       string
	Token         string
	Extension     string
	DefaultBranch string
	TTL           time.Duration
	HTTP          *retryablehttp.Client
}

// Client fetches folder listings and caches them per query.
type Client struct {
	baseURL       string
	token         string
	ext           string
	defaultBranch string
	http          *retryablehttp.Client
	cache         *cache.Cache[[]models.AssetEntry]
}

func NewClient(opts Options) *Client {
	if opts.HTTP == nil {
		opts.HTTP = httpx.New(httpx.Options{})
	}
	if opts.Extension == "" {
		opts.Extension = ".svg"
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "main"
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	return &Client{
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		token:         opts.Token,
		ext:           opts.Extension,
		defaultBranch: opts.DefaultBranch,
		http:          opts.HTTP,
		cache:         cache.New[[]models.AssetEntry](opts.TTL),
	}
}

// Extension is the file extension the client keeps.
func (c *Client) Extension() string { return c.ext }

// DefaultBranch is used when a query names no branch.
func (c *Client) DefaultBranch() string { return c.defaultBranch }

// Fetch returns the filtered, name-sorted entries of the folder named by q.
// Results are cached for the configured TTL; a hit makes no request.
func (c *Client) Fetch(ctx context.Context, q Query) ([]models.AssetEntry, error) {
	q, err := q.Normalize(c.defaultBranch)
	if err != nil {
		return nil, err
	}

	entries, hit, err := c.cache.GetOrLoad(ctx, q.Key(), func(ctx context.Context) ([]models.AssetEntry, error) {
		return c.fetchRemote(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		slog.Debug("listing cache hit", "repo", q.Repo, "folder", q.Folder, "branch", q.Branch)
	}
	// callers may reorder; the cached slice stays untouched
	return slices.Clone(entries), nil
}

// Invalidate drops the cached listing for q.
func (c *Client) Invalidate(q Query) bool {
	q, err := q.Normalize(c.defaultBranch)
	if err != nil {
		return false
	}
	return c.cache.Invalidate(q.Key())
}

// Purge drops every cached listing.
func (c *Client) Purge() int {
	return c.cache.Purge()
}

// URL is the listing endpoint for a normalized query.
func (c *Client) URL(q Query) string {
	owner, name, _ := ParseRepo(q.Repo)
	segs := strings.Split(q.Folder, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	v := url.Values{"ref": {q.Branch}}
	return c.baseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name) +
		"/contents/" + strings.Join(segs, "/") + "?" + v.Encode()
}

func (c *Client) fetchRemote(ctx context.Context, q Query) ([]models.AssetEntry, error) {
	u := c.URL(q)
	header := http.Header{"Accept": {"application/vnd.github+json"}}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	body, _, err := httpx.Get(ctx, c.http, u, header, maxListingBytes)
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) {
			return nil, &UnavailableError{URL: u, StatusCode: se.StatusCode, Err: err}
		}
		return nil, &UnavailableError{URL: u, Err: err}
	}

	entries, err := Parse(body)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: err}
	}

	entries = Filter(entries, c.ext)
	SortByName(entries)

	slog.Info("listing fetched", "repo", q.Repo, "folder", q.Folder, "branch", q.Branch, "entries", len(entries))
	return entries, nil
}
