// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/models"
)

// Remote is the vote store as seen by a client.
type Remote interface {
	Counts(ctx context.Context, titles []string) (map[string]models.VoteCount, error)
	Increment(ctx context.Context, title string, dir models.Direction) (models.VoteCount, error)
}

// Client talks to the gallery server's vote API.
type Client struct {
	baseURL string
	read    *retryablehttp.Client
	write   *retryablehttp.Client
}

// NewClient builds a client for the server at baseURL. Reads are retried up
// to retryMax times; increments are never retried.
func NewClient(baseURL string, retryMax int) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		read:    httpx.New(httpx.Options{RetryMax: retryMax}),
		write:   httpx.New(httpx.Options{RetryMax: 0}),
	}
}

// MaxBulkTitles bounds the titles of one bulk counter read on the server.
const MaxBulkTitles = 500

// Counts reads the counters of titles, or every stored counter when titles
// is empty. Large title sets are split into several requests.
func (c *Client) Counts(ctx context.Context, titles []string) (map[string]models.VoteCount, error) {
	if len(titles) <= MaxBulkTitles {
		return c.countsBatch(ctx, titles)
	}

	out := make(map[string]models.VoteCount, len(titles))
	for batch := range slices.Chunk(titles, MaxBulkTitles) {
		counts, err := c.countsBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, counts)
	}
	return out, nil
}

func (c *Client) countsBatch(ctx context.Context, titles []string) (map[string]models.VoteCount, error) {
	v := url.Values{}
	for _, t := range titles {
		v.Add("title", t)
	}

	body, _, err := httpx.Get(ctx, c.read, c.baseURL+"/api/votes?"+v.Encode(), http.Header{"Accept": {"application/json"}}, 4<<20)
	if err != nil {
		return nil, fmt.Errorf("fetch counts: %w", err)
	}

	var resp models.CountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}
	if resp.Counts == nil {
		resp.Counts = map[string]models.VoteCount{}
	}
	return resp.Counts, nil
}

func (c *Client) Increment(ctx context.Context, title string, dir models.Direction) (models.VoteCount, error) {
	if !dir.Valid() {
		return models.VoteCount{}, fmt.Errorf("unknown vote direction %q", dir)
	}

	u := c.baseURL + "/api/votes/" + url.PathEscape(title) + "/" + string(dir)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return models.VoteCount{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", httpx.DefaultUserAgent)

	resp, err := c.write.Do(req)
	if err != nil {
		return models.VoteCount{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.VoteCount{}, err
	}
	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return models.VoteCount{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, e.Message)
		}
		return models.VoteCount{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var count models.VoteCount
	if err := json.Unmarshal(body, &count); err != nil {
		return models.VoteCount{}, fmt.Errorf("decode count: %w", err)
	}
	if count.Title == "" {
		return models.VoteCount{}, errors.New("server returned no title")
	}
	return count, nil
}
