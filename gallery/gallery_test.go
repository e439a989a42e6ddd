// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gallery

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/models"
)

type fakeLister struct {
	entries []models.AssetEntry
	err     error
	block   bool // wait for ctx
	mu      sync.Mutex
	ctxErr  error
}

func (f *fakeLister) Fetch(ctx context.Context, q listing.Query) ([]models.AssetEntry, error) {
	if f.block {
		<-ctx.Done()
		f.mu.Lock()
		f.ctxErr = ctx.Err()
		f.mu.Unlock()
		return nil, &listing.UnavailableError{URL: "fake", Err: ctx.Err()}
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.AssetEntry(nil), f.entries...), nil
}

func (f *fakeLister) Extension() string     { return ".svg" }
func (f *fakeLister) DefaultBranch() string { return "main" }

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]models.VoteCount
	err    error
}

func (f *fakeCounter) GetCounts(_ context.Context, titles []string) (map[string]models.VoteCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.VoteCount)
	for t, c := range f.counts {
		out[t] = c
	}
	for _, t := range titles {
		if _, ok := out[t]; !ok {
			out[t] = models.VoteCount{Title: t}
		}
	}
	return out, nil
}

func (f *fakeCounter) set(c models.VoteCount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[c.Title] = c
}

func files(names ...string) []models.AssetEntry {
	out := make([]models.AssetEntry, len(names))
	for i, n := range names {
		out[i] = models.AssetEntry{Name: n, Path: "svgs/" + n, Kind: models.KindFile, Size: 2048}
	}
	return out
}

var testQuery = listing.Query{Repo: "owner/repo", Folder: "svgs"}

func startAndWait(t *testing.T, g *Gallery) *Session {
	t.Helper()
	s, err := g.Start(testQuery)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("session did not finish: %v", err)
	}
	return s
}

func titles(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want State
	}{
		{"no query", Status{}, Prompt},
		{"no query ignores the rest", Status{Done: true, Err: errors.New("x")}, Prompt},
		{"pending", Status{HasQuery: true}, Loading},
		{"failed", Status{HasQuery: true, Done: true, Err: listing.ErrUnavailable}, Error},
		{"nothing after filtering", Status{HasQuery: true, Done: true}, Empty},
		{"entries", Status{HasQuery: true, Done: true, Entries: 2}, Populated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.st); got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGallery_Populated(t *testing.T) {
	counter := &fakeCounter{counts: map[string]models.VoteCount{
		"A": {Title: "A", UpCount: 3},
		"B": {Title: "B", UpCount: 5},
	}}
	g := New(&fakeLister{entries: files("A.svg", "B.svg")}, counter, Options{})
	defer g.Close()

	s := startAndWait(t, g)
	if s.State() != Populated {
		t.Fatalf("state = %v, want populated (err %v)", s.State(), s.Err())
	}
	if got := titles(s.Cards()); strings.Join(got, ",") != "B,A" {
		t.Errorf("order = %v, want [B A]", got)
	}

	// a later vote changes numbers only
	counter.set(models.VoteCount{Title: "A", UpCount: 50})
	if err := g.Refresh(context.Background(), s); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	cards := s.Cards()
	if got := titles(cards); strings.Join(got, ",") != "B,A" {
		t.Errorf("order after refresh = %v, want [B A]", got)
	}
	if cards[1].Votes.UpCount != 50 {
		t.Errorf("A up = %d, want 50", cards[1].Votes.UpCount)
	}
}

func TestGallery_EmptyIsNotError(t *testing.T) {
	g := New(&fakeLister{entries: nil}, &fakeCounter{}, Options{})
	defer g.Close()

	s := startAndWait(t, g)
	if s.State() != Empty {
		t.Fatalf("state = %v, want empty", s.State())
	}

	v := g.Grid(s)
	var buf bytes.Buffer
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Grid(&buf, v); err != nil {
		t.Fatalf("Grid render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No .svg files found in svgs.") {
		t.Errorf("empty message missing: %s", buf.String())
	}
	if strings.Contains(buf.String(), "unavailable") {
		t.Errorf("empty state rendered the error message: %s", buf.String())
	}
}

func TestGallery_ListingError(t *testing.T) {
	lister := &fakeLister{err: &listing.UnavailableError{URL: "x", StatusCode: 404}}
	g := New(lister, &fakeCounter{}, Options{})
	defer g.Close()

	s := startAndWait(t, g)
	if s.State() != Error {
		t.Fatalf("state = %v, want error", s.State())
	}
	if !errors.Is(s.Err(), listing.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", s.Err())
	}
	if s.Frozen() {
		t.Error("failed session must not freeze")
	}
	if v := g.Grid(s); v.Message != "The asset listing is unavailable." {
		t.Errorf("message = %q", v.Message)
	}
}

func TestGallery_VoteReadFailureFallsBackToNames(t *testing.T) {
	g := New(&fakeLister{entries: files("b.svg", "a.svg")}, &fakeCounter{err: errors.New("db down")}, Options{})
	defer g.Close()

	s := startAndWait(t, g)
	if s.State() != Populated {
		t.Fatalf("state = %v, want populated", s.State())
	}
	if got := titles(s.Cards()); strings.Join(got, ",") != "a,b" {
		t.Errorf("order = %v, want name order", got)
	}
}

func TestGallery_DuplicateTitles(t *testing.T) {
	g := New(&fakeLister{entries: files("Logo.svg", "Logo.SVG", "x.svg")}, &fakeCounter{}, Options{})
	defer g.Close()

	s := startAndWait(t, g)
	if n := len(s.Cards()); n != 2 {
		t.Errorf("cards = %d, want 2", n)
	}
	dropped := s.Dropped()
	if len(dropped) != 1 || !strings.EqualFold(dropped[0].Name, "logo.svg") {
		t.Errorf("dropped = %+v, want one Logo variant", dropped)
	}
}

func TestGallery_Timeout(t *testing.T) {
	g := New(&fakeLister{block: true}, &fakeCounter{}, Options{ResolveTimeout: 50 * time.Millisecond})
	defer g.Close()

	s := startAndWait(t, g)
	if s.State() != Error {
		t.Fatalf("state = %v, want error", s.State())
	}
	if !errors.Is(s.Err(), ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", s.Err())
	}
}

func TestGallery_EndCancels(t *testing.T) {
	lister := &fakeLister{block: true}
	g := New(lister, &fakeCounter{}, Options{ResolveTimeout: time.Minute})
	defer g.Close()

	s, err := g.Start(testQuery)
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != Loading {
		t.Errorf("state = %v, want loading", s.State())
	}
	if !g.End(s.ID) {
		t.Fatal("End did not find the session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("session not canceled: %v", err)
	}
	if !errors.Is(s.Err(), context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", s.Err())
	}
	if s.Frozen() {
		t.Error("canceled session must not freeze")
	}
	if _, ok := g.Session(s.ID); ok {
		t.Error("ended session still registered")
	}
}

func TestGallery_EndDoesNotFailSharedListing(t *testing.T) {
	var hits atomic.Int32
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "a.svg", "path": "svgs/a.svg", "type": "file", "size": 10}]`))
	}))
	defer remote.Close()

	lc := listing.NewClient(listing.Options{BaseURL: remote.URL, HTTP: httpx.New(httpx.Options{RetryMax: 0})})
	g := New(lc, &fakeCounter{counts: map[string]models.VoteCount{}}, Options{ResolveTimeout: 5 * time.Second})
	defer g.Close()

	first, err := g.Start(testQuery)
	if err != nil {
		t.Fatal(err)
	}
	// both sessions wait on the same listing request
	time.Sleep(50 * time.Millisecond)
	second, err := g.Start(testQuery)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	g.End(first.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := second.Wait(ctx); err != nil {
		t.Fatalf("second session did not finish: %v", err)
	}
	if second.State() != Populated {
		t.Fatalf("second session state = %v (err %v), want populated", second.State(), second.Err())
	}
	if err := first.Wait(ctx); err != nil {
		t.Fatalf("first session did not finish: %v", err)
	}
	if !errors.Is(first.Err(), context.Canceled) {
		t.Errorf("first session err = %v, want context.Canceled", first.Err())
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("listing requested %d times, want 1", n)
	}
}

func TestGallery_StartValidates(t *testing.T) {
	g := New(&fakeLister{}, &fakeCounter{}, Options{})
	defer g.Close()

	if _, err := g.Start(listing.Query{Repo: "nope", Folder: "x"}); !errors.Is(err, listing.ErrInvalidRepo) {
		t.Errorf("Expected ErrInvalidRepo, got %v", err)
	}
	s, err := g.Start(listing.Query{Repo: "o/r", Folder: "/svgs/"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Query.Branch != "main" || s.Query.Folder != "svgs" {
		t.Errorf("query = %+v, want normalized", s.Query)
	}
}

func TestRenderer_Page(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	t.Run("loading", func(t *testing.T) {
		var buf bytes.Buffer
		v := PageView{
			Query:    listing.Query{Repo: "o/r", Folder: "svgs", Branch: "main"},
			HasQuery: true,
			Grid:     GridView{SessionID: "sid", State: Loading, Skeletons: make([]int, SkeletonCards)},
		}
		if err := r.Page(&buf, v); err != nil {
			t.Fatalf("Page failed: %v", err)
		}
		html := buf.String()
		if n := strings.Count(html, `<div class="skeleton">`); n != SkeletonCards {
			t.Errorf("skeleton cards = %d, want %d", n, SkeletonCards)
		}
		if !strings.Contains(html, `data-session="sid"`) || !strings.Contains(html, `data-state="loading"`) {
			t.Error("grid container attributes missing")
		}
	})

	t.Run("prompt", func(t *testing.T) {
		var buf bytes.Buffer
		if err := r.Page(&buf, PageView{Grid: PromptGrid()}); err != nil {
			t.Fatalf("Page failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Enter a repository and folder") {
			t.Error("prompt message missing")
		}
	})
}

func TestRenderer_PopulatedGrid(t *testing.T) {
	dl := "https://raw.example/o/r/main/svgs/Model_A.svg"
	entries := files("Model_A.svg", "model_b.svg")
	entries[0].DownloadURL = &dl

	counter := &fakeCounter{counts: map[string]models.VoteCount{"model_b": {Title: "model_b", UpCount: 1200}}}
	g := New(&fakeLister{entries: entries}, counter, Options{})
	defer g.Close()
	s := startAndWait(t, g)

	v := g.Grid(s)
	if len(v.Cards) != 2 || v.Cards[0].Title != "model_b" || v.Cards[0].Rank != 1 {
		t.Fatalf("cards = %+v", v.Cards)
	}
	if v.Cards[1].Size != "2.0 kB" {
		t.Errorf("size = %q, want 2.0 kB", v.Cards[1].Size)
	}
	if !strings.Contains(v.Cards[1].EditorURL, "url=https%3A%2F%2Fraw.example") {
		t.Errorf("editor url = %s", v.Cards[1].EditorURL)
	}
	if strings.Contains(v.Cards[0].EditorURL, "url=") {
		t.Errorf("entry without download url got one: %s", v.Cards[0].EditorURL)
	}

	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Grid(&buf, v); err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	html := buf.String()
	if !strings.HasSuffix(v.Cards[0].AttemptURL, "&attempt=1") || v.Cards[0].Attempts != 3 {
		t.Errorf("attempt url = %s (%d attempts)", v.Cards[0].AttemptURL, v.Cards[0].Attempts)
	}
	for _, want := range []string{`data-title="model_b"`, ">1,200<", "/images?", "#1 B", "#2 A", "attempt=1", `data-attempts="3"`, "attempt 1 of 3"} {
		if !strings.Contains(html, want) {
			t.Errorf("grid missing %q", want)
		}
	}
}
