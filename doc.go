// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SVG gallery server.

The server lists the SVG files of a repository folder, shows them as a
gallery ranked by up-votes, and keeps per-title up/down counters. The order
is fixed once per page load; counters keep updating in place.

# Starting the Server

	ADMIN_KEY_SALT=... DATABASE_URL=gallery.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --admin-salt ...

A .env file in the working directory is loaded first; variables already in
the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC and IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - GALLERY_REPO, GALLERY_PATH, GALLERY_BRANCH: default query
  - GALLERY_EXT: listed file extension (default: .svg)
  - LISTING_BASE_URL, RAW_BASE_URL, CDN_BASE_URL: remote endpoints
  - GITHUB_TOKEN: listing API token
  - ASSETS_DIR: local asset copies served under /assets/
  - LISTING_TTL, SESSION_TTL, RESOLVE_TIMEOUT, RETRY_MAX

# Architecture

  - cliparse: Configuration parsing
  - db: Connection and schema
  - listing: Folder listing client, ordering and titles
  - votes: Vote store, HTTP client and optimistic ledger
  - ranking: One-shot ranking coordinator
  - imgchain: Image fallback chain
  - gallery: Page sessions, view states and templates
  - editor: SVG loading and sanitised preview
  - handlers, router, middleware: HTTP surface
  - cmd/galleryctl: Command-line client

See the router package for the endpoint list.
*/
package main
