// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/db"
)

// SetupTestDB creates a fresh sqlite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gallery.db")
	conn, err := db.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration. Remote endpoints
// point at the given base URL (usually a FakeGitHub server).
func GetTestConfig(remote string) cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   "sqlite",
		AdminKeySalt:   "test-admin-salt",
		DefaultBranch:  "main",
		Extension:      ".svg",
		ListingBaseURL: remote,
		RawBaseURL:     remote + "/raw",
		CDNBaseURL:     remote + "/cdn",
		AssetsDir:      "",
		ListingTTL:     time.Minute,
		SessionTTL:     time.Minute,
		ResolveTimeout: 5 * time.Second,
		RetryMax:       0,
	}
}

// SetTestVotes writes counters directly
func SetTestVotes(t *testing.T, conn *sql.DB, title string, up, down int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO asset_vote (title, up_count, down_count, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (title) DO UPDATE SET up_count = $2, down_count = $3
	`, title, up, down, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to set test votes: %v", err)
	}
}

// FakeGitHub serves a folder listing, raw files and CDN files.
// Listing payloads and file bodies are set per path; everything else is 404.
type FakeGitHub struct {
	*httptest.Server

	mu       sync.Mutex
	listings map[string]string // path -> JSON body
	files    map[string][]byte // path -> content
	status   map[string]int    // path -> forced status

	ListingHits atomic.Int32
}

func NewFakeGitHub(t *testing.T) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{
		listings: make(map[string]string),
		files:    make(map[string][]byte),
		status:   make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// SetListing registers the JSON listing for /repos/{repo}/contents/{folder}
func (f *FakeGitHub) SetListing(repo, folder, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings["/repos/"+repo+"/contents/"+folder] = body
}

// SetFile registers content served at path
func (f *FakeGitHub) SetFile(path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
}

// SetStatus forces a status code for path
func (f *FakeGitHub) SetStatus(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[path] = code
}

func (f *FakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	code, forced := f.status[r.URL.Path]
	listing, isListing := f.listings[r.URL.Path]
	file, isFile := f.files[r.URL.Path]
	f.mu.Unlock()

	if isListing || forced && len(r.URL.Path) > 7 && r.URL.Path[:7] == "/repos/" {
		f.ListingHits.Add(1)
	}
	if forced {
		w.WriteHeader(code)
		return
	}
	switch {
	case isListing:
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listing))
	case isFile:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(file)
	default:
		http.NotFound(w, r)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
