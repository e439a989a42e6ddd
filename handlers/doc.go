// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the SVG gallery server.

# Handler Types

Each handler is a struct built from its collaborators and the Config:

  - GalleryHandler: the gallery page, its grid fragment and frozen order
  - VotingHandler: vote counters and increments
  - ImageHandler: image proxy walking the fallback chain
  - EditorHandler: SVG editor page and preview sanitising
  - AdminHandler: cache invalidation and the vote audit log

	votingHandler := handlers.NewVotingHandler(votes.NewStore(db), cfg)

# Gallery Flow

	GET /                      → Page (starts a session, renders Loading)
	GET /gallery/{id}/grid     → Grid (fragment, X-Gallery-State header)
	GET /gallery/{id}/order    → Order (frozen order, live counters)
	POST /gallery/{id}/end     → End (cancels outstanding work)

The page polls the grid fragment until its state leaves loading.

# Votes

	GET /api/votes?title=a&title=b → GetCounts (missing titles are zero)
	GET /api/votes/{title}         → GetCount
	POST /api/votes/{title}/up     → Vote
	POST /api/votes/{title}/down   → Vote

Every POST is exactly one increment. The response carries the stored
counts after the update, which the page shows in place of its optimistic
value.

# Images

	GET /images?repo=o/r&branch=main&path=svgs/a.svg&name=a.svg

The response headers X-Image-Source and X-Image-Attempt name the candidate
that loaded and its position ("attempt 2 of 3"). When every candidate fails
the response is 502.

The gallery page adds attempt=N to try one candidate per request and shows
the indicator on the card in between. A failed attempt answers 502 with
X-Image-Next naming the attempt to request next; after the last candidate
the header is absent.

Admin operations require the X-Admin-Key header.
*/
package handlers
