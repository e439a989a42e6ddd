// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/svg-gallery/models"
)

const MaxTitleLen = 200

var ErrInvalidTitle = errors.New("title must be 1-200 characters")

// Voter describes the origin of an increment for the audit log.
// Both fields are optional.
type Voter struct {
	IPHash    string
	UserAgent string
}

// Store reads and writes vote counters in the asset_vote table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ValidateTitle checks a title before it reaches the database.
func ValidateTitle(title string) error {
	if title == "" || len(title) > MaxTitleLen {
		return ErrInvalidTitle
	}
	return nil
}

// GetCounts returns counters for titles. Titles without a row map to zero
// counts. A nil titles slice returns every stored row.
func (s *Store) GetCounts(ctx context.Context, titles []string) (map[string]models.VoteCount, error) {
	counts := make(map[string]models.VoteCount, len(titles))

	query := `SELECT title, up_count, down_count FROM asset_vote`
	var args []any
	if titles != nil {
		if len(titles) == 0 {
			return counts, nil
		}
		placeholders := make([]string, len(titles))
		args = make([]any, len(titles))
		for i, t := range titles {
			placeholders[i] = "$" + strconv.Itoa(i+1)
			args[i] = t
			counts[t] = models.VoteCount{Title: t}
		}
		query += ` WHERE title IN (` + strings.Join(placeholders, ", ") + `)`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.VoteCount
		if err := rows.Scan(&c.Title, &c.UpCount, &c.DownCount); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[c.Title] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}

// GetCount returns the counters for one title; a missing row is zero.
func (s *Store) GetCount(ctx context.Context, title string) (models.VoteCount, error) {
	c := models.VoteCount{Title: title}
	err := s.db.QueryRowContext(ctx, `
		SELECT up_count, down_count FROM asset_vote WHERE title = $1
	`, title).Scan(&c.UpCount, &c.DownCount)

	if err == sql.ErrNoRows {
		return c, nil
	}
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("query count: %w", err)
	}
	return c, nil
}

func (s *Store) IncrementUp(ctx context.Context, title string) (models.VoteCount, error) {
	return s.Increment(ctx, title, models.DirectionUp, Voter{})
}

func (s *Store) IncrementDown(ctx context.Context, title string) (models.VoteCount, error) {
	return s.Increment(ctx, title, models.DirectionDown, Voter{})
}

// Increment bumps one counter of title by exactly one and returns the counts
// as stored after the update. The counter update is a single upsert, so
// concurrent increments from any number of servers never lose a vote.
func (s *Store) Increment(ctx context.Context, title string, dir models.Direction, voter Voter) (models.VoteCount, error) {
	if err := ValidateTitle(title); err != nil {
		return models.VoteCount{}, err
	}

	var upsert string
	switch dir {
	case models.DirectionUp:
		upsert = `
			INSERT INTO asset_vote (title, up_count, down_count, updated_at)
			VALUES ($1, 1, 0, $2)
			ON CONFLICT (title) DO UPDATE
			SET up_count = asset_vote.up_count + 1, updated_at = $2
			RETURNING up_count, down_count`
	case models.DirectionDown:
		upsert = `
			INSERT INTO asset_vote (title, up_count, down_count, updated_at)
			VALUES ($1, 0, 1, $2)
			ON CONFLICT (title) DO UPDATE
			SET down_count = asset_vote.down_count + 1, updated_at = $2
			RETURNING up_count, down_count`
	default:
		return models.VoteCount{}, fmt.Errorf("unknown vote direction %q", dir)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	c := models.VoteCount{Title: title}
	if err := tx.QueryRowContext(ctx, upsert, title, now).Scan(&c.UpCount, &c.DownCount); err != nil {
		return models.VoteCount{}, fmt.Errorf("increment %s: %w", dir, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_event (id, title, direction, ip_hash, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), title, string(dir), nullString(voter.IPHash), nullString(voter.UserAgent), now)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("record vote event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoteCount{}, fmt.Errorf("commit increment: %w", err)
	}
	return c, nil
}

// Events returns the audit rows of title, oldest first.
func (s *Store) Events(ctx context.Context, title string) ([]models.VoteEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, direction, ip_hash, user_agent, created_at
		FROM vote_event
		WHERE title = $1
		ORDER BY created_at, id
	`, title)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []models.VoteEvent{}
	for rows.Next() {
		var ev models.VoteEvent
		var dir string
		if err := rows.Scan(&ev.ID, &ev.Title, &dir, &ev.IPHash, &ev.UserAgent, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Direction = models.Direction(dir)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
