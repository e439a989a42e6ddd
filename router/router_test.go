// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/testutil"
)

func newTestRouter(t *testing.T, cfg cliparse.Config) *Router {
	t.Helper()

	db := testutil.SetupTestDB(t)
	r, err := NewRouter(db, cfg)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	r := newTestRouter(t, testutil.GetTestConfig(gh.URL))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	r := newTestRouter(t, testutil.GetTestConfig(gh.URL))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Enter a repository and folder") {
		t.Errorf("Expected prompt page, got '%s'", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected request logging middleware to set X-Request-ID")
	}
}

func TestRouteExistence(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	gh.SetListing("owner/repo", "svgs", `[]`)
	r := newTestRouter(t, testutil.GetTestConfig(gh.URL))

	// Routes must reach a handler; handler-level 4xx answers are fine
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/?repo=owner/repo&path=svgs"},
		{"GET", "/gallery/some-id/grid"},
		{"GET", "/gallery/some-id/order"},
		{"POST", "/gallery/some-id/end"},
		{"GET", "/api/votes?title=a"},
		{"GET", "/api/votes/a"},
		{"POST", "/api/votes/a/up"},
		{"POST", "/api/votes/a/down"},
		{"GET", "/images?repo=owner/repo&path=svgs/a.svg"},
		{"GET", "/editor"},
		{"POST", "/editor/preview"},
		{"POST", "/admin/cache/invalidate"},
		{"GET", "/admin/votes/a/events"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405", tc.method, tc.path)
			}
			// The mux's own 404 is plain text; handler 404s are JSON
			if w.Code == http.StatusNotFound && !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Route %s %s is not registered", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	r := newTestRouter(t, testutil.GetTestConfig(gh.URL))

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/votes/a/up"},
		{"DELETE", "/api/votes/a"},
		{"GET", "/editor/preview"},
		{"GET", "/admin/cache/invalidate"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405, got %d", w.Code)
			}
		})
	}
}

func TestVoteThroughRouter(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	r := newTestRouter(t, testutil.GetTestConfig(gh.URL))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/api/votes/My%20Logo/up", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/votes/My%20Logo", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"up_count":2`) {
		t.Errorf("Expected up_count 2, got %s", w.Body.String())
	}
}

func TestAssetsRoute(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	cfg := testutil.GetTestConfig(gh.URL)
	cfg.AssetsDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.AssetsDir, "a.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/assets/a.svg", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "<svg/>" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/images?repo=owner/repo&path=svgs/a.svg&name=a.svg", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("X-Image-Source") != "/assets/a.svg" {
		t.Errorf("source = %q", w.Header().Get("X-Image-Source"))
	}
}
