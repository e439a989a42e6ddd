// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides the explicit TTL cache used for listing results and
gallery sessions.

	listings := cache.New[[]models.AssetEntry](time.Minute)
	entries, hit, err := listings.GetOrLoad(ctx, key, func(ctx context.Context) ([]models.AssetEntry, error) {
		return fetch(ctx)
	})

A hit never calls the loader. Concurrent misses for one key are collapsed
with singleflight, so a burst of identical page loads costs one remote call.
The shared load does not inherit any one caller's cancellation: a caller
that gives up stops waiting, the others still get the result.

Invalidate, Purge and Sweep remove entries; the OnEvict hook sees each one.
Sessions use that hook to cancel work still in flight.
*/
package cache
