// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

Load an optional .env file, then parse flags:

	if err := cliparse.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Each flag falls back to an environment variable, then to a default:

	-p                PORT              (3318)
	-d                DATABASE_URL      (required)
	-t                DATABASE_TYPE     (sqlite | postgres, default sqlite)
	--admin-salt      ADMIN_KEY_SALT    (required)
	--github-token    GITHUB_TOKEN
	--repo            GALLERY_REPO      (no default)
	--path            GALLERY_PATH      (no default)
	--branch          GALLERY_BRANCH    (main)
	--ext             GALLERY_EXT       (.svg)
	--listing-url     LISTING_BASE_URL  (https://api.github.com)
	--raw-url         RAW_BASE_URL      (https://raw.githubusercontent.com)
	--cdn-url         CDN_BASE_URL      (https://cdn.jsdelivr.net/gh)
	--assets          ASSETS_DIR        (public/assets)
	--listing-ttl     LISTING_TTL       (1m)
	--session-ttl     SESSION_TTL       (30m)
	--resolve-timeout RESOLVE_TIMEOUT   (30s)
	--retry-max       RETRY_MAX         (2)

CLI flags take precedence over environment variables.

Repository and folder have no default on purpose: a page request without
them renders a prompt instead of an error.
*/
package cliparse
