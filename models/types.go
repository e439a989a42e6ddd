package models

import "time"

// Entry kinds reported by the listing endpoint
const (
	KindFile = "file"
	KindDir  = "dir"
)

// Vote directions
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Domain types

// AssetEntry is one record of a remote folder listing.
type AssetEntry struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Kind        string  `json:"type"`
	DownloadURL *string `json:"download_url"`
	Size        int64   `json:"size"`
}

// VoteCount holds the counters for one title. Absence of a stored row means zero.
type VoteCount struct {
	Title     string `json:"title"`
	UpCount   int    `json:"up_count"`
	DownCount int    `json:"down_count"`
}

// Add returns a copy of c with the counter for dir bumped by one.
func (c VoteCount) Add(dir Direction) VoteCount {
	switch dir {
	case DirectionUp:
		c.UpCount++
	case DirectionDown:
		c.DownCount++
	}
	return c
}

type VoteEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Direction Direction `json:"direction"`
	IPHash    *string   `json:"-"` // Never expose in JSON
	UserAgent *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

// Response types

type CountsResponse struct {
	Counts map[string]VoteCount `json:"counts"`
}

type Card struct {
	Entry        AssetEntry `json:"entry"`
	Title        string     `json:"title"`
	DisplayTitle string     `json:"display_title"`
	Votes        VoteCount  `json:"votes"`
}

type OrderResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Frozen    bool   `json:"frozen"`
	Cards     []Card `json:"cards"`
}

type PreviewRequest struct {
	Code string `json:"code"`
}

type PreviewResponse struct {
	Markup  string `json:"markup"`
	Title   string `json:"title,omitempty"`
	ViewBox string `json:"view_box,omitempty"`
	Width   string `json:"width,omitempty"`
	Height  string `json:"height,omitempty"`
	Removed int    `json:"removed"`
}

type InvalidateResponse struct {
	Purged int `json:"purged"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
