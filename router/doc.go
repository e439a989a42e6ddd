// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SVG gallery server.

# Route Registration

NewRouter builds the shared services (listing client, vote store, gallery
sessions, image fetcher) and a configured http.ServeMux with all endpoints:

	r, err := router.NewRouter(db, cfg)
	defer r.Close()

# Endpoints

Health:

	GET /health

Gallery:

	GET  /                    - Page (query: repo, path, branch)
	GET  /gallery/{id}/grid   - Grid fragment for polling
	GET  /gallery/{id}/order  - Frozen order with live counters
	POST /gallery/{id}/end    - Cancel a session

Votes (public):

	GET  /api/votes?title=...            - Bulk counters
	GET  /api/votes/{title}              - One counter
	POST /api/votes/{title}/{direction}  - Increment up or down

Images and editor:

	GET  /images          - Image through the fallback chain (attempt=N: one candidate)
	GET  /assets/...      - Local asset copies (when ASSETS_DIR is set)
	GET  /editor          - Editor page
	POST /editor/preview  - Sanitised preview

Admin (requires X-Admin-Key):

	POST /admin/cache/invalidate      - Drop cached listings
	GET  /admin/votes/{title}/events  - Vote audit log
*/
package router
