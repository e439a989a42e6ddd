// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes keeps per-title up/down counters.

# Store

Store is the server side, backed by the asset_vote table:

	store := votes.NewStore(conn)
	counts, err := store.GetCounts(ctx, []string{"a", "b"}) // missing titles are zero
	c, err := store.IncrementUp(ctx, "a")                   // authoritative post-increment counts

Each increment is one upsert with RETURNING, plus an audit row in
vote_event, in one transaction. Nothing stops one person from voting many
times.

# Client and Ledger

Client is an HTTP client of the server's vote API. Ledger sits on top of any
Remote and applies the optimistic protocol:

	l := votes.NewLedger(votes.NewClient("http://localhost:3318", 2))
	l.OnNotice(func(n votes.Notice) { fmt.Println("vote failed:", n.Err) })
	c, err := l.Vote(ctx, "a", models.DirectionUp)

The local counter moves by one immediately (tentative). When the remote
call returns, it is replaced by the server's counts (confirmed) or restored
to its previous value (rolled back). While a vote for a title is in flight,
further votes for it return ErrInFlight.
*/
package votes
