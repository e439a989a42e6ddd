// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package listing

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/danielhkuo/svg-gallery/models"
)

var (
	// collate.Collator keeps internal buffers and is not safe for concurrent use
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

// CompareNames orders names by Unicode collation (root locale). Names that
// collate equal fall back to byte order so the result is a total order.
func CompareNames(a, b string) int {
	collatorMu.Lock()
	c := collator.CompareString(a, b)
	collatorMu.Unlock()
	if c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortByName sorts entries in place by CompareNames on Name.
func SortByName(entries []models.AssetEntry) {
	slices.SortStableFunc(entries, func(x, y models.AssetEntry) int {
		return CompareNames(x.Name, y.Name)
	})
}

// Title strips ext from name, case-insensitively. The result is the join key
// between listing entries and vote counters.
func Title(name, ext string) string {
	if len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}

var dashRuns = regexp.MustCompile(`[_-]+`)

// DisplayTitle turns a file name like "frevo_claude-sonnet.svg" into "Claude Sonnet".
// The part after the last separator wins, checked in the order "__", "-", "_";
// short words are upper-cased and longer ones capitalised.
func DisplayTitle(name, ext string) string {
	base := Title(name, ext)
	part := base
	for _, sep := range []string{"__", "-", "_"} {
		if strings.Contains(base, sep) {
			pieces := strings.Split(base, sep)
			part = pieces[len(pieces)-1]
		}
	}

	normalized := strings.TrimSpace(dashRuns.ReplaceAllString(part, " "))
	words := strings.Split(normalized, " ")
	for i, w := range words {
		if utf8.RuneCountInString(w) <= 3 {
			words[i] = strings.ToUpper(w)
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// DedupeTitles keeps the first entry for each title and returns the rest as
// dropped. Entries should already be sorted so "first" is deterministic.
func DedupeTitles(entries []models.AssetEntry, ext string) (kept, dropped []models.AssetEntry) {
	seen := make(map[string]bool, len(entries))
	kept = make([]models.AssetEntry, 0, len(entries))
	for _, e := range entries {
		t := Title(e.Name, ext)
		if seen[t] {
			dropped = append(dropped, e)
			continue
		}
		seen[t] = true
		kept = append(kept, e)
	}
	return kept, dropped
}
