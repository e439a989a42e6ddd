// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package editor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/models"
)

const MaxMarkupBytes = 1 << 20

var (
	ErrMissingURL = errors.New("svg url not found")
	ErrNoSVG      = errors.New("markup has no <svg> element")
)

// LoadError is a non-2xx response while loading markup.
type LoadError struct {
	URL        string
	StatusCode int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading svg: %d", e.StatusCode)
}

// Editor loads markup for editing and renders previews.
type Editor struct {
	http *retryablehttp.Client
}

func New(client *retryablehttp.Client) *Editor {
	if client == nil {
		client = httpx.New(httpx.Options{})
	}
	return &Editor{http: client}
}

// Load fetches the markup at url as text.
func (e *Editor) Load(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", ErrMissingURL
	}

	body, _, err := httpx.Get(ctx, e.http, url, http.Header{"Accept": {"image/svg+xml,text/plain;q=0.9,*/*;q=0.5"}}, MaxMarkupBytes)
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) {
			return "", &LoadError{URL: url, StatusCode: se.StatusCode}
		}
		return "", fmt.Errorf("failed to load svg: %w", err)
	}
	return string(body), nil
}

var (
	xmlProlog = regexp.MustCompile(`(?i)<\?xml[^>]*\?>`)
	doctype   = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)
)

// StripProlog removes the XML declaration and any doctype so the markup can
// be inlined into an HTML page.
func StripProlog(markup string) string {
	markup = xmlProlog.ReplaceAllString(markup, "")
	return strings.TrimSpace(doctype.ReplaceAllString(markup, ""))
}

// Preview returns inline-safe markup for the first <svg> element: scripts,
// event handler attributes and javascript: links are removed and counted.
func Preview(markup string) (models.PreviewResponse, error) {
	if len(markup) > MaxMarkupBytes {
		return models.PreviewResponse{}, fmt.Errorf("markup exceeds %d bytes", MaxMarkupBytes)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(StripProlog(markup)))
	if err != nil {
		return models.PreviewResponse{}, err
	}

	svg := doc.Find("svg").First()
	if svg.Length() == 0 {
		return models.PreviewResponse{}, ErrNoSVG
	}

	removed := 0
	blocked := svg.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		switch strings.ToLower(goquery.NodeName(s)) {
		case "script", "foreignobject":
			return true
		case "animate", "set", "animatemotion", "animatetransform":
			return animatesLink(s)
		}
		return false
	})
	removed += blocked.Length()
	blocked.Remove()

	svg.Find("*").AddSelection(svg).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if unsafeAttr(a.Key, a.Val) {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})

	out, err := goquery.OuterHtml(svg)
	if err != nil {
		return models.PreviewResponse{}, err
	}

	viewBox, _ := svg.Attr("viewBox")
	width, _ := svg.Attr("width")
	height, _ := svg.Attr("height")

	return models.PreviewResponse{
		Markup:  out,
		Title:   strings.TrimSpace(svg.ChildrenFiltered("title").First().Text()),
		ViewBox: viewBox,
		Width:   width,
		Height:  height,
		Removed: removed,
	}, nil
}

// animatesLink reports animation elements that rewrite a link at runtime.
func animatesLink(s *goquery.Selection) bool {
	for _, a := range s.Get(0).Attr {
		if !strings.EqualFold(a.Key, "attributeName") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(a.Val)) {
		case "href", "xlink:href", "src":
			return true
		}
	}
	return false
}

// unsafeAttr reports event handlers, links that run script and animation
// values that would set one.
func unsafeAttr(key, val string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "on") {
		return true
	}
	v := strings.ToLower(strings.Join(strings.Fields(val), ""))
	switch key {
	case "href", "src":
		return scriptURL(v)
	case "values", "from", "to", "by":
		// values is a ;-separated list
		for item := range strings.SplitSeq(v, ";") {
			if scriptURL(item) {
				return true
			}
		}
	}
	return false
}

func scriptURL(v string) bool {
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "data:text/html")
}
