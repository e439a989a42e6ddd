// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/svg-gallery/cache"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/ranking"
)

// ErrTimeout is recorded when a resolution outlives the resolve timeout.
var ErrTimeout = errors.New("gallery resolution timed out")

// Lister is the listing side of a gallery load.
type Lister interface {
	Fetch(ctx context.Context, q listing.Query) ([]models.AssetEntry, error)
	Extension() string
	DefaultBranch() string
}

// Counter is the vote side of a gallery load.
type Counter interface {
	GetCounts(ctx context.Context, titles []string) (map[string]models.VoteCount, error)
}

type Options struct {
	SessionTTL     time.Duration
	ResolveTimeout time.Duration
}

// Gallery starts and tracks page sessions.
type Gallery struct {
	lister   Lister
	counter  Counter
	timeout  time.Duration
	sessions *cache.Cache[*Session]
	wg       sync.WaitGroup
}

func New(lister Lister, counter Counter, opts Options) *Gallery {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = 30 * time.Second
	}
	return &Gallery{
		lister:  lister,
		counter: counter,
		timeout: opts.ResolveTimeout,
		sessions: cache.New[*Session](opts.SessionTTL, cache.OnEvict[*Session](func(_ string, s *Session) {
			s.cancel()
		})),
	}
}

// Extension is the file extension of listed assets.
func (g *Gallery) Extension() string { return g.lister.Extension() }

// Session is one page lifetime: a query, its coordinator and the outcome
// of resolving it.
type Session struct {
	ID      string
	Query   listing.Query
	Created time.Time

	coord  *ranking.Coordinator
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	err     error
	entries int
	dropped []models.AssetEntry
}

// Start registers a session for q and resolves it in the background.
func (g *Gallery) Start(q listing.Query) (*Session, error) {
	q, err := q.Normalize(g.lister.DefaultBranch())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	s := &Session{
		ID:      uuid.NewString(),
		Query:   q,
		Created: time.Now(),
		coord:   ranking.NewCoordinator(g.lister.Extension()),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	g.sessions.Set(s.ID, s)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer cancel()
		g.resolve(ctx, s)
	}()
	return s, nil
}

// Session looks up a live session.
func (g *Gallery) Session(id string) (*Session, bool) {
	return g.sessions.Get(id)
}

// End drops a session and cancels its outstanding work.
func (g *Gallery) End(id string) bool {
	return g.sessions.Invalidate(id)
}

// Sweep drops expired sessions.
func (g *Gallery) Sweep() int {
	return g.sessions.Sweep()
}

// Len is the number of live sessions.
func (g *Gallery) Len() int {
	return g.sessions.Len()
}

// Close cancels every session and waits for their resolutions to return.
func (g *Gallery) Close() {
	g.sessions.Purge()
	g.wg.Wait()
}

// resolve runs the listing fetch and the bulk vote read concurrently and
// hands both to the coordinator, which freezes once both arrived.
func (g *Gallery) resolve(ctx context.Context, s *Session) {
	defer close(s.done)

	gen, ok := s.coord.Begin()
	if !ok {
		return
	}
	ext := g.lister.Extension()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		entries, err := g.lister.Fetch(egCtx, s.Query)
		if err != nil {
			return err
		}
		if egCtx.Err() != nil {
			return egCtx.Err()
		}
		listing.SortByName(entries)
		kept, dropped := listing.DedupeTitles(entries, ext)
		for _, d := range dropped {
			slog.Warn("duplicate asset title dropped", "session_id", s.ID, "name", d.Name, "title", listing.Title(d.Name, ext))
		}
		s.mu.Lock()
		s.entries = len(kept)
		s.dropped = dropped
		s.mu.Unlock()
		s.coord.SetEntries(gen, kept)
		return nil
	})
	eg.Go(func() error {
		// The titles are not known until the listing arrives, so read every
		// counter to keep the two fetches concurrent.
		counts, err := g.counter.GetCounts(egCtx, nil)
		if err != nil {
			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			// vote data is optional; rank by name only
			slog.Warn("vote counts unavailable", "session_id", s.ID, "error", err)
			counts = map[string]models.VoteCount{}
		}
		if egCtx.Err() != nil {
			return egCtx.Err()
		}
		s.coord.SetCounts(gen, counts)
		return nil
	})

	err := eg.Wait()
	if err == nil && !s.Frozen() {
		err = ctx.Err()
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = ErrTimeout
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if err != nil {
		slog.Warn("gallery resolution failed", "session_id", s.ID, "repo", s.Query.Repo, "folder", s.Query.Folder, "error", err)
		return
	}
	slog.Info("gallery resolved", "session_id", s.ID, "repo", s.Query.Repo, "folder", s.Query.Folder, "entries", s.entriesCount())
}

func (s *Session) entriesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// Done is closed when resolution has finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until resolution has finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status reports the resolution outcome so far.
func (s *Session) Status() Status {
	st := Status{HasQuery: true}
	select {
	case <-s.done:
		st.Done = true
	default:
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.Err = s.err
	st.Entries = s.entries
	return st
}

// State is the render state of the session.
func (s *Session) State() State { return Select(s.Status()) }

// Frozen reports whether the display order is fixed.
func (s *Session) Frozen() bool { return s.coord.State() == ranking.Frozen }

// Cards returns the entries in display order with their latest counters.
func (s *Session) Cards() []models.Card { return s.coord.Cards() }

// Dropped returns entries removed because their title collided with an
// earlier entry.
func (s *Session) Dropped() []models.AssetEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AssetEntry(nil), s.dropped...)
}

// Err returns the listing failure, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Refresh re-reads the counters of the session's titles. The order stays
// frozen; only the numbers change.
func (g *Gallery) Refresh(ctx context.Context, s *Session) error {
	if !s.Frozen() {
		return nil
	}
	cards := s.Cards()
	titles := make([]string, len(cards))
	for i, c := range cards {
		titles[i] = c.Title
	}
	counts, err := g.counter.GetCounts(ctx, titles)
	if err != nil {
		return fmt.Errorf("refresh counts: %w", err)
	}
	s.coord.UpdateCounts(counts)
	return nil
}
