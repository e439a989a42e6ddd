// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the vote database and creates its schema.

# Connecting

Open picks the driver from the configured type (lib/pq for postgres,
modernc.org/sqlite for sqlite) and pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements are portable between postgres and sqlite.

# Tables

  - asset_vote: up_count and down_count per title
  - vote_event: one audit row per increment (hashed IP, user agent)

Counters only grow. Increments are single upsert statements, so atomicity
comes from the database rather than from any lock in the server.
*/
package db
