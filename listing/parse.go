// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/svg-gallery/models"
)

// wrapped is the object form of a listing: the entries under "items".
type wrapped struct {
	Items *[]models.AssetEntry `json:"items"`
}

// Parse decodes a listing payload. Both a bare array of entries and an object
// carrying the array under "items" are accepted.
func Parse(body []byte) ([]models.AssetEntry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty payload")
	}

	var entries []models.AssetEntry
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("decode entries: %w", err)
		}
	case '{':
		var w wrapped
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("decode wrapped entries: %w", err)
		}
		if w.Items == nil {
			return nil, errors.New(`object payload has no "items" array`)
		}
		entries = *w.Items
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", body[0])
	}

	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entry %d has no name", i)
		}
	}
	return entries, nil
}

// Filter keeps files whose name ends in ext, compared case-insensitively.
func Filter(entries []models.AssetEntry, ext string) []models.AssetEntry {
	ext = strings.ToLower(ext)
	out := make([]models.AssetEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != models.KindFile {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name), ext) {
			continue
		}
		out = append(out, e)
	}
	return out
}
