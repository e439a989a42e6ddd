// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/editor"
	"github.com/danielhkuo/svg-gallery/gallery"
	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/imgchain"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/testutil"
	"github.com/danielhkuo/svg-gallery/votes"
)

const testListing = `[
	{"name": "Model_A.svg", "path": "svgs/Model_A.svg", "type": "file", "download_url": null, "size": 1500},
	{"name": "model_b.svg", "path": "svgs/model_b.svg", "type": "file", "download_url": null, "size": 2048},
	{"name": "readme.md", "path": "svgs/readme.md", "type": "file", "download_url": null, "size": 10},
	{"name": "nested", "path": "svgs/nested", "type": "dir", "download_url": null, "size": 0}
]`

// testEnv wires every handler against a sqlite database and a fake remote.
type testEnv struct {
	db       *sql.DB
	cfg      cliparse.Config
	gh       *testutil.FakeGitHub
	store    *votes.Store
	listing  *listing.Client
	gallery  *gallery.Gallery
	renderer *gallery.Renderer

	galleryHandler *GalleryHandler
	votingHandler  *VotingHandler
	imageHandler   *ImageHandler
	editorHandler  *EditorHandler
	adminHandler   *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gh := testutil.NewFakeGitHub(t)
	cfg := testutil.GetTestConfig(gh.URL)
	db := testutil.SetupTestDB(t)
	client := httpx.New(httpx.Options{RetryMax: 0})

	lc := listing.NewClient(listing.Options{
		BaseURL:       cfg.ListingBaseURL,
		Extension:     cfg.Extension,
		DefaultBranch: cfg.DefaultBranch,
		TTL:           cfg.ListingTTL,
		HTTP:          client,
	})
	store := votes.NewStore(db)
	g := gallery.New(lc, store, gallery.Options{SessionTTL: cfg.SessionTTL, ResolveTimeout: cfg.ResolveTimeout})
	t.Cleanup(g.Close)

	renderer, err := gallery.NewRenderer()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}

	return &testEnv{
		db:       db,
		cfg:      cfg,
		gh:       gh,
		store:    store,
		listing:  lc,
		gallery:  g,
		renderer: renderer,

		galleryHandler: NewGalleryHandler(g, renderer, cfg),
		votingHandler:  NewVotingHandler(store, cfg),
		imageHandler:   NewImageHandler(imgchain.NewHTTPFetcher(imgchain.DefaultLocalPrefix, cfg.AssetsDir, client), cfg),
		editorHandler:  NewEditorHandler(editor.New(client), renderer, cfg),
		adminHandler:   NewAdminHandler(lc, g, store, cfg),
	}
}

var sessionAttr = regexp.MustCompile(`data-session="([^"]+)"`)

// openGallery loads the page for owner/repo svgs and waits for resolution.
func (e *testEnv) openGallery(t *testing.T) *gallery.Session {
	t.Helper()

	req := httptest.NewRequest("GET", "/?repo=owner/repo&path=svgs", nil)
	w := httptest.NewRecorder()
	e.galleryHandler.Page(w, req)
	testutil.AssertStatus(t, w, 200)

	m := sessionAttr.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatalf("page has no session id: %s", w.Body.String())
	}
	s, ok := e.gallery.Session(m[1])
	if !ok {
		t.Fatalf("session %s not registered", m[1])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("session did not resolve: %v", err)
	}
	return s
}
