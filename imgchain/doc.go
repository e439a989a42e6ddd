// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package imgchain resolves one gallery image through an ordered list of
candidate sources.

A Chain is a small state machine: it starts Loading on the primary
candidate, each Fail moves to the next candidate, and once every candidate
has failed it is Failed. Only Retry leaves Failed, and it starts over from
the primary.

	chain := imgchain.DefaultTemplates().Chain(src) // local, raw, CDN
	img, err := imgchain.Resolve(ctx, chain, fetcher, func(a imgchain.Attempt) {
		log.Println(a.Indicator()) // "attempt 2 of 3"
	})
*/
package imgchain
