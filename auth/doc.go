// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the operator key check and IP hashing.

# Admin Key

The key guarding operator endpoints is an HMAC of AdminScope under the
deployment salt (ADMIN_KEY_SALT):

	key := auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt)
	err := auth.ValidateAdminKey(auth.AdminScope, r.Header.Get("X-Admin-Key"), cfg.AdminKeySalt)

Comparison is constant time.

# IP Hashing

Vote audit rows store a salted hash, never the raw address:

	ipHash := auth.HashIP(middleware.GetClientIP(r), cfg.AdminKeySalt)

Hashes are only used to correlate events. Votes are not deduplicated per
voter.
*/
package auth
