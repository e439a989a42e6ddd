// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gallery turns a folder listing and its vote counters into the
rendered gallery page.

# Sessions

Every page load starts a Session. Its resolution fetches the listing and
reads all vote counters concurrently; the ranking coordinator freezes the
card order as soon as both have arrived:

	s, err := g.Start(listing.Query{Repo: "owner/repo", Folder: "svgs"})
	view := g.Grid(s) // Loading until resolution finishes

Sessions live in a TTL cache. Evicting one (expiry, End or Close) cancels
its resolution, and results that arrive after that are discarded. A
resolution that outlives the resolve timeout ends in the Error state with
ErrTimeout.

# States

Select maps a Status to exactly one of Prompt, Loading, Error, Empty and
Populated. An empty folder is Empty, never Error.
*/
package gallery
