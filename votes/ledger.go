// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/svg-gallery/models"
)

var (
	// ErrVoteFailed wraps every failed increment, whatever the cause.
	ErrVoteFailed = errors.New("vote submission failed")
	// ErrInFlight is returned when a title already has a vote pending.
	ErrInFlight = errors.New("vote already in flight")
)

// Phase of a vote as seen by the ledger.
type Phase int

const (
	PhaseTentative Phase = iota
	PhaseConfirmed
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseTentative:
		return "tentative"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Change describes one visible counter transition.
type Change struct {
	Title string
	Phase Phase
	Count models.VoteCount
}

// Notice is raised when a vote was rolled back.
type Notice struct {
	Title     string
	Direction models.Direction
	Err       error
}

// Ledger is a client-side cache of vote counters that applies votes
// optimistically: the counter moves before the remote call returns and is
// either replaced by the server's counts or restored to its previous value.
type Ledger struct {
	remote Remote

	mu      sync.Mutex
	counts  map[string]models.VoteCount
	pending map[string]bool

	onChange func(Change)
	onNotice func(Notice)
}

func NewLedger(remote Remote) *Ledger {
	return &Ledger{
		remote:  remote,
		counts:  make(map[string]models.VoteCount),
		pending: make(map[string]bool),
	}
}

// OnChange registers a hook for every visible counter change.
func (l *Ledger) OnChange(fn func(Change)) { l.onChange = fn }

// OnNotice registers the user-facing failure notice hook.
func (l *Ledger) OnNotice(fn func(Notice)) { l.onNotice = fn }

// Load fills the cache from the remote for titles. Titles with a vote in
// flight keep their local value.
func (l *Ledger) Load(ctx context.Context, titles []string) error {
	counts, err := l.remote.Counts(ctx, titles)
	if err != nil {
		return fmt.Errorf("load counts: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range titles {
		if l.pending[t] {
			continue
		}
		c, ok := counts[t]
		if !ok {
			c = models.VoteCount{Title: t}
		}
		l.counts[t] = c
	}
	return nil
}

// Count returns the currently visible counters of title.
func (l *Ledger) Count(title string) models.VoteCount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(title)
}

// Pending reports whether title has a vote in flight.
func (l *Ledger) Pending(title string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending[title]
}

func (l *Ledger) countLocked(title string) models.VoteCount {
	c, ok := l.counts[title]
	if !ok {
		c = models.VoteCount{Title: title}
	}
	return c
}

// Vote casts one vote for title. On success the returned counts are the
// server's; on failure the previous counts are restored and returned along
// with an error wrapping ErrVoteFailed.
func (l *Ledger) Vote(ctx context.Context, title string, dir models.Direction) (models.VoteCount, error) {
	if !dir.Valid() {
		return models.VoteCount{}, fmt.Errorf("unknown vote direction %q", dir)
	}

	l.mu.Lock()
	if l.pending[title] {
		c := l.countLocked(title)
		l.mu.Unlock()
		return c, ErrInFlight
	}
	prev := l.countLocked(title)
	tentative := prev.Add(dir)
	l.counts[title] = tentative
	l.pending[title] = true
	l.mu.Unlock()
	l.changed(Change{Title: title, Phase: PhaseTentative, Count: tentative})

	got, err := l.remote.Increment(ctx, title, dir)

	l.mu.Lock()
	delete(l.pending, title)
	if err != nil {
		l.counts[title] = prev
		l.mu.Unlock()

		slog.Warn("vote rolled back", "title", title, "direction", dir, "error", err)
		l.changed(Change{Title: title, Phase: PhaseRolledBack, Count: prev})
		if l.onNotice != nil {
			l.onNotice(Notice{Title: title, Direction: dir, Err: err})
		}
		return prev, fmt.Errorf("%w: %v", ErrVoteFailed, err)
	}
	got.Title = title
	l.counts[title] = got
	l.mu.Unlock()

	l.changed(Change{Title: title, Phase: PhaseConfirmed, Count: got})
	return got, nil
}

func (l *Ledger) changed(c Change) {
	if l.onChange != nil {
		l.onChange(c)
	}
}
