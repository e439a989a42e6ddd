// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types shared by the
gallery server and its clients.

# Domain Types

  - AssetEntry: one record from the remote folder listing (name, path, type,
    download_url, size). JSON tags follow the listing endpoint's field names.
  - VoteCount: up/down counters for one title. A missing row is a zero count.
  - VoteEvent: audit row written alongside every increment.
  - Card: an entry joined with its title, display title and counters.

# Response Types

  - CountsResponse: counts keyed by title
  - OrderResponse: a gallery session's frozen order with live counters
  - PreviewResponse: sanitised SVG markup and its basic attributes
  - InvalidateResponse: number of purged cache entries
  - ErrorResponse: error, message

# Constants

Entry kinds:

	KindFile = "file"
	KindDir  = "dir"

Vote directions:

	DirectionUp   = "up"
	DirectionDown = "down"
*/
package models
