// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/danielhkuo/svg-gallery/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func entries(names ...string) []models.AssetEntry {
	out := make([]models.AssetEntry, len(names))
	for i, n := range names {
		out[i] = models.AssetEntry{Name: n, Path: "assets/" + n, Kind: models.KindFile}
	}
	return out
}

func names(es []models.AssetEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		counts map[string]models.VoteCount
		want   []string
	}{
		{
			name:   "up votes descending",
			in:     []string{"A.svg", "B.svg"},
			counts: map[string]models.VoteCount{"A": {Title: "A", UpCount: 3}, "B": {Title: "B", UpCount: 5}},
			want:   []string{"B.svg", "A.svg"},
		},
		{
			name:   "ties by name",
			in:     []string{"c.svg", "a.svg", "b.svg"},
			counts: map[string]models.VoteCount{"a": {UpCount: 1}, "b": {UpCount: 1}, "c": {UpCount: 1}},
			want:   []string{"a.svg", "b.svg", "c.svg"},
		},
		{
			name:   "down votes do not break ties",
			in:     []string{"b.svg", "a.svg"},
			counts: map[string]models.VoteCount{"a": {UpCount: 2, DownCount: 9}, "b": {UpCount: 2}},
			want:   []string{"a.svg", "b.svg"},
		},
		{
			name:   "no votes falls back to names",
			in:     []string{"model_b.svg", "Model_A.svg"},
			counts: nil,
			want:   []string{"Model_A.svg", "model_b.svg"},
		},
		{
			name:   "title match ignores extension case",
			in:     []string{"a.svg", "Z.SVG"},
			counts: map[string]models.VoteCount{"Z": {UpCount: 1}},
			want:   []string{"Z.SVG", "a.svg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(entries(tt.in...), tt.counts, ".svg")
			if !equal(names(got), tt.want) {
				t.Errorf("Rank() = %v, want %v", names(got), tt.want)
			}
			again := Rank(got, tt.counts, ".svg")
			if !equal(names(again), tt.want) {
				t.Errorf("Rank() not idempotent: %v", names(again))
			}
		})
	}
}

func TestCoordinator_FreezeOnBoth(t *testing.T) {
	for _, countsFirst := range []bool{false, true} {
		c := NewCoordinator(".svg")
		if c.State() != Unresolved {
			t.Fatalf("initial state = %v", c.State())
		}
		gen, ok := c.Begin()
		if !ok {
			t.Fatal("Begin refused on a fresh coordinator")
		}

		counts := map[string]models.VoteCount{"A": {Title: "A", UpCount: 3}, "B": {Title: "B", UpCount: 5}}
		if countsFirst {
			c.SetCounts(gen, counts)
		} else {
			c.SetEntries(gen, entries("A.svg", "B.svg"))
		}
		if c.State() != Resolving {
			t.Errorf("state after one result = %v, want resolving", c.State())
		}
		if countsFirst {
			c.SetEntries(gen, entries("A.svg", "B.svg"))
		} else {
			c.SetCounts(gen, counts)
		}

		if c.State() != Frozen {
			t.Fatalf("state = %v, want frozen", c.State())
		}
		if got := names(c.Order()); !equal(got, []string{"B.svg", "A.svg"}) {
			t.Errorf("order = %v, want [B.svg A.svg]", got)
		}
	}
}

func TestCoordinator_EmptyCountsCompletes(t *testing.T) {
	c := NewCoordinator(".svg")
	gen, _ := c.Begin()
	c.SetEntries(gen, entries("b.svg", "a.svg"))
	c.SetCounts(gen, map[string]models.VoteCount{})

	if c.State() != Frozen {
		t.Fatalf("state = %v, want frozen", c.State())
	}
	if got := names(c.Order()); !equal(got, []string{"a.svg", "b.svg"}) {
		t.Errorf("order = %v", got)
	}
}

func TestCoordinator_FrozenIgnoresVotes(t *testing.T) {
	c := NewCoordinator(".svg")
	gen, _ := c.Begin()
	c.SetEntries(gen, entries("A.svg", "B.svg"))
	c.SetCounts(gen, map[string]models.VoteCount{"B": {Title: "B", UpCount: 5}})

	before := names(c.Order())
	c.UpdateCount(models.VoteCount{Title: "A", UpCount: 100})

	if got := names(c.Order()); !equal(got, before) {
		t.Errorf("order changed after freeze: %v -> %v", before, got)
	}
	cards := c.Cards()
	if cards[1].Title != "A" || cards[1].Votes.UpCount != 100 {
		t.Errorf("card A = %+v, want updated counter 100", cards[1])
	}

	if _, ok := c.Begin(); ok {
		t.Error("Begin should refuse once frozen")
	}
	if c.SetEntries(gen, entries("Z.svg")) {
		t.Error("SetEntries accepted after freeze")
	}
}

func TestCoordinator_StaleGeneration(t *testing.T) {
	c := NewCoordinator(".svg")
	old, _ := c.Begin()
	cur, _ := c.Begin()
	if cur == old {
		t.Fatal("Begin did not advance the generation")
	}

	if c.SetEntries(old, entries("stale.svg")) {
		t.Error("stale entries accepted")
	}
	if c.SetCounts(old, map[string]models.VoteCount{}) {
		t.Error("stale counts accepted")
	}
	if c.State() != Resolving {
		t.Errorf("state = %v, want resolving", c.State())
	}

	c.SetEntries(cur, entries("fresh.svg"))
	c.SetCounts(cur, nil)
	if got := names(c.Order()); !equal(got, []string{"fresh.svg"}) {
		t.Errorf("order = %v, want [fresh.svg]", got)
	}
}

func TestCoordinator_OrderBeforeFreeze(t *testing.T) {
	c := NewCoordinator(".svg")
	gen, _ := c.Begin()
	c.SetEntries(gen, entries("b.svg", "a.svg"))

	if got := names(c.Order()); !equal(got, []string{"a.svg", "b.svg"}) {
		t.Errorf("fallback order = %v, want name order", got)
	}
}

func TestCoordinator_ConcurrentDelivery(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := NewCoordinator(".svg")
		gen, _ := c.Begin()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetEntries(gen, entries("A.svg", "B.svg"))
		}()
		go func() {
			defer wg.Done()
			c.SetCounts(gen, map[string]models.VoteCount{"A": {UpCount: 1}})
		}()
		wg.Wait()

		if c.State() != Frozen {
			t.Fatalf("run %d: state = %v", i, c.State())
		}
		if got := names(c.Order()); !equal(got, []string{"A.svg", "B.svg"}) {
			t.Fatalf("run %d: order = %v", i, got)
		}
	}
}
