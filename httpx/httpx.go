// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package httpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "svg-gallery/1.0"
)

type Options struct {
	// RetryMax is the number of retries after the first attempt. 0 disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
}

// New builds a client that retries connection errors, 429 and 5xx responses
// up to RetryMax times. Final responses are handed back as-is so callers can
// read the status code themselves.
func New(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = max(opts.RetryMax, 0)
	if opts.RetryWaitMin > 0 {
		c.RetryWaitMin = opts.RetryWaitMin
	} else {
		c.RetryWaitMin = 200 * time.Millisecond
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
	} else {
		c.RetryWaitMax = 2 * time.Second
	}
	c.HTTPClient.Timeout = DefaultTimeout
	if opts.Timeout > 0 {
		c.HTTPClient.Timeout = opts.Timeout
	}
	// *slog.Logger satisfies retryablehttp.LeveledLogger
	if opts.Logger != nil {
		c.Logger = opts.Logger
	} else {
		c.Logger = slog.Default()
	}
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Get performs a GET and returns the body of a 2xx response, reading at most
// limit bytes. Any other status is a *StatusError.
func Get(ctx context.Context, c *retryablehttp.Client, url string, header http.Header, limit int64) ([]byte, http.Header, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.Header, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, resp.Header, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, resp.Header, fmt.Errorf("GET %s: body exceeds %d bytes", url, limit)
	}
	return body, resp.Header, nil
}
