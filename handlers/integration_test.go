// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/testutil"
	"github.com/danielhkuo/svg-gallery/votes"
)

// TestFullGalleryWorkflow walks a visitor through one page lifetime:
// 1. Load the page (Loading)
// 2. Poll the grid until it is populated, ranked by up votes
// 3. Vote through the optimistic ledger against a live server
// 4. Check the counter moved but the order did not
// 5. Simulate a failed vote and check the rollback
func TestFullGalleryWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.gh.SetListing("owner/repo", "svgs", testListing)
	testutil.SetTestVotes(t, env.db, "Model_A", 3, 0)
	testutil.SetTestVotes(t, env.db, "model_b", 5, 0)

	// Step 1 & 2
	s := env.openGallery(t)

	req := httptest.NewRequest("GET", "/gallery/"+s.ID+"/grid", nil)
	req.SetPathValue("id", s.ID)
	w := httptest.NewRecorder()
	env.galleryHandler.Grid(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	html := w.Body.String()
	if w.Header().Get(GalleryStateHeader) != "populated" {
		t.Fatalf("Step 2 - state = %s", w.Header().Get(GalleryStateHeader))
	}
	if strings.Index(html, `data-title="model_b"`) > strings.Index(html, `data-title="Model_A"`) {
		t.Fatal("Step 2 - model_b (5 up) should render before Model_A (3 up)")
	}
	if strings.Contains(html, "readme") || strings.Contains(html, "nested") {
		t.Error("Step 2 - non-svg entries rendered")
	}

	// Step 3: a real HTTP server for the vote client
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/votes", env.votingHandler.GetCounts)
	mux.HandleFunc("POST /api/votes/{title}/{direction}", env.votingHandler.Vote)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ledger := votes.NewLedger(votes.NewClient(srv.URL, 0))
	if err := ledger.Load(context.Background(), []string{"Model_A", "model_b"}); err != nil {
		t.Fatalf("Step 3 - ledger load failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := ledger.Vote(context.Background(), "Model_A", models.DirectionUp); err != nil {
			t.Fatalf("Step 3 - vote %d failed: %v", i, err)
		}
	}
	if got := ledger.Count("Model_A").UpCount; got != 6 {
		t.Errorf("Step 3 - ledger Model_A up = %d, want 6", got)
	}

	// Step 4: Model_A now leads, but the page order is frozen
	req = httptest.NewRequest("GET", "/gallery/"+s.ID+"/order", nil)
	req.SetPathValue("id", s.ID)
	w = httptest.NewRecorder()
	env.galleryHandler.Order(w, req)
	var order models.OrderResponse
	testutil.AssertJSON(t, w, &order)
	if order.Cards[0].Title != "model_b" {
		t.Errorf("Step 4 - order changed: first card %s", order.Cards[0].Title)
	}
	if order.Cards[1].Votes.UpCount != 6 {
		t.Errorf("Step 4 - Model_A up = %d, want 6", order.Cards[1].Votes.UpCount)
	}

	// Step 5: the server goes away; the vote rolls back to the pre-click value
	srv.Close()
	var notices int
	ledger.OnNotice(func(votes.Notice) { notices++ })
	got, err := ledger.Vote(context.Background(), "Model_A", models.DirectionUp)
	if err == nil {
		t.Fatal("Step 5 - expected vote failure")
	}
	if got.UpCount != 6 || ledger.Count("Model_A").UpCount != 6 {
		t.Errorf("Step 5 - up = %d, want rollback to 6", got.UpCount)
	}
	if notices != 1 {
		t.Errorf("Step 5 - notices = %d, want 1", notices)
	}
}
