// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package listing fetches a remote repository folder listing and turns it into
the ordered set of gallery assets.

# Fetching

	c := listing.NewClient(listing.Options{BaseURL: "https://api.github.com"})
	entries, err := c.Fetch(ctx, listing.Query{Repo: "owner/repo", Folder: "public/assets"})

One GET goes to {base}/repos/{owner}/{repo}/contents/{folder}?ref={branch}.
The payload may be a bare array or an object with the array under "items".
Only files whose name ends in the configured extension are kept, compared
case-insensitively, and they are sorted by CompareNames.

Every failure (non-2xx, transport, malformed JSON) is an *UnavailableError
matching ErrUnavailable. No partial result is ever returned.

Results are cached per (repo, folder, branch) for the configured TTL.

# Titles

Title strips the extension and is the key vote counters are stored under.
DisplayTitle derives the card caption from the file name.
*/
package listing
