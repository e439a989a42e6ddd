// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"slices"
	"sync"

	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/models"
)

// State of a Coordinator.
type State int

const (
	Unresolved State = iota
	Resolving
	Frozen
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Frozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Rank returns entries ordered by up votes descending, then by name.
// Down votes never break ties. The input is not modified.
func Rank(entries []models.AssetEntry, counts map[string]models.VoteCount, ext string) []models.AssetEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.AssetEntry) int {
		ua := counts[listing.Title(a.Name, ext)].UpCount
		ub := counts[listing.Title(b.Name, ext)].UpCount
		if ua != ub {
			if ua > ub {
				return -1
			}
			return 1
		}
		return listing.CompareNames(a.Name, b.Name)
	})
	return out
}

// Coordinator joins a listing with vote counts and freezes the display
// order exactly once per generation. Each Begin starts a new generation;
// results tagged with an older generation are dropped.
type Coordinator struct {
	ext string

	mu      sync.Mutex
	state   State
	gen     uint64
	entries []models.AssetEntry
	counts  map[string]models.VoteCount
	haveE   bool
	haveC   bool
	order   []models.AssetEntry
}

func NewCoordinator(ext string) *Coordinator {
	return &Coordinator{ext: ext, counts: make(map[string]models.VoteCount)}
}

// Begin starts a new resolution and returns its generation. ok is false when
// the coordinator is already frozen.
func (c *Coordinator) Begin() (gen uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Frozen {
		return c.gen, false
	}
	c.gen++
	c.state = Resolving
	c.entries, c.haveE, c.haveC = nil, false, false
	c.counts = make(map[string]models.VoteCount)
	return c.gen, true
}

// SetEntries delivers the listing for gen. It reports whether the result
// was accepted.
func (c *Coordinator) SetEntries(gen uint64, entries []models.AssetEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return false
	}
	c.entries = slices.Clone(entries)
	c.haveE = true
	c.maybeFreezeLocked()
	return true
}

// SetCounts delivers the bulk vote read for gen. An empty map is a valid
// completion.
func (c *Coordinator) SetCounts(gen uint64, counts map[string]models.VoteCount) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return false
	}
	for t, v := range counts {
		c.counts[t] = v
	}
	c.haveC = true
	c.maybeFreezeLocked()
	return true
}

func (c *Coordinator) currentLocked(gen uint64) bool {
	return c.state == Resolving && gen == c.gen
}

func (c *Coordinator) maybeFreezeLocked() {
	if !c.haveE || !c.haveC {
		return
	}
	c.order = Rank(c.entries, c.counts, c.ext)
	c.state = Frozen
}

// UpdateCount changes the displayed counters of one title. The order is
// never touched.
func (c *Coordinator) UpdateCount(v models.VoteCount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[v.Title] = v
}

// UpdateCounts applies UpdateCount for every value.
func (c *Coordinator) UpdateCounts(counts map[string]models.VoteCount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for t, v := range counts {
		c.counts[t] = v
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Order returns the frozen order, or the name-sorted listing before freeze.
func (c *Coordinator) Order() []models.AssetEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderLocked()
}

func (c *Coordinator) orderLocked() []models.AssetEntry {
	if c.state == Frozen {
		return slices.Clone(c.order)
	}
	out := slices.Clone(c.entries)
	listing.SortByName(out)
	return out
}

// Cards returns the current order joined with the latest counters.
func (c *Coordinator) Cards() []models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	order := c.orderLocked()
	cards := make([]models.Card, len(order))
	for i, e := range order {
		title := listing.Title(e.Name, c.ext)
		v, ok := c.counts[title]
		if !ok {
			v = models.VoteCount{Title: title}
		}
		cards[i] = models.Card{
			Entry:        e,
			Title:        title,
			DisplayTitle: listing.DisplayTitle(e.Name, c.ext),
			Votes:        v,
		}
	}
	return cards
}
