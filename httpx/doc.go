// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package httpx builds the outbound HTTP clients (listing, images, editor
// sources, vote API) on go-retryablehttp and provides a bounded GET helper.
//
// Only idempotent reads should use a client with RetryMax > 0. Vote
// increments go through a client built with RetryMax 0 so that one click is
// one request.
package httpx
