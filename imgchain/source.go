// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imgchain

import (
	"net/url"
	"strings"
)

const (
	DefaultLocalPrefix = "/assets/"
	DefaultRawBase     = "https://raw.githubusercontent.com"
	DefaultCDNBase     = "https://cdn.jsdelivr.net/gh"
)

// Source names one asset in a repository.
type Source struct {
	Owner       string
	Repo        string
	Branch      string
	Path        string // path inside the repository
	Name        string // file name
	DownloadURL string // optional, reported by the listing
}

// Templates build the candidate URLs of a Source.
type Templates struct {
	LocalPrefix string
	RawBase     string
	CDNBase     string
}

func DefaultTemplates() Templates {
	return Templates{
		LocalPrefix: DefaultLocalPrefix,
		RawBase:     DefaultRawBase,
		CDNBase:     DefaultCDNBase,
	}
}

// Local is the primary candidate, a static path derived from the file name.
func (t Templates) Local(s Source) string {
	return t.LocalPrefix + url.PathEscape(s.Name)
}

// Raw is the raw-content URL; a listing download URL takes its place.
func (t Templates) Raw(s Source) string {
	if s.DownloadURL != "" {
		return s.DownloadURL
	}
	return strings.TrimSuffix(t.RawBase, "/") + "/" + url.PathEscape(s.Owner) + "/" + url.PathEscape(s.Repo) +
		"/" + url.PathEscape(s.Branch) + "/" + escapePath(s.Path)
}

func (t Templates) CDN(s Source) string {
	return strings.TrimSuffix(t.CDNBase, "/") + "/" + url.PathEscape(s.Owner) + "/" + url.PathEscape(s.Repo) +
		"@" + url.PathEscape(s.Branch) + "/" + escapePath(s.Path)
}

// CandidateCount is the length of every chain built by Templates.Chain.
const CandidateCount = 3

// Chain returns a fresh chain over local, raw and CDN candidates.
func (t Templates) Chain(s Source) *Chain {
	return New(t.Local(s), t.Raw(s), t.CDN(s))
}

func escapePath(p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
