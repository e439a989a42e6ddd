// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gallery

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/svg-gallery/imgchain"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/models"
)

// SkeletonCards is the number of placeholder cards shown while loading.
const SkeletonCards = 8

//go:embed templates/*.html
var templateFS embed.FS

// CardView is one rendered card.
type CardView struct {
	models.Card
	Rank      int
	ImageURL  string
	EditorURL string
	Size      string

	// The page requests one image candidate at a time, starting at
	// AttemptURL, and shows "attempt N of Attempts" meanwhile.
	AttemptURL string
	Attempts   int
}

type GridView struct {
	SessionID string
	State     State
	Message   string
	Cards     []CardView
	Skeletons []int
}

type PageView struct {
	Query     listing.Query
	HasQuery  bool
	Extension string
	Grid      GridView
}

type EditorView struct {
	Title   string
	URL     string
	Code    string
	Error   string
	Preview template.HTML // output of editor.Preview, already sanitised
}

// Renderer executes the embedded page templates.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
	}
	t, err := template.New("gallery").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Page(w io.Writer, v PageView) error {
	return r.t.ExecuteTemplate(w, "page.html", v)
}

func (r *Renderer) Grid(w io.Writer, v GridView) error {
	return r.t.ExecuteTemplate(w, "grid", v)
}

func (r *Renderer) Editor(w io.Writer, v EditorView) error {
	return r.t.ExecuteTemplate(w, "editor.html", v)
}

// PromptGrid is shown when no repository or folder was given.
func PromptGrid() GridView {
	return GridView{State: Prompt, Message: "Enter a repository and folder to browse."}
}

// Grid builds the grid view of s for its current state.
func (g *Gallery) Grid(s *Session) GridView {
	st := s.Status()
	v := GridView{SessionID: s.ID, State: Select(st)}

	switch v.State {
	case Loading:
		v.Skeletons = make([]int, SkeletonCards)
	case Error:
		v.Message = "The asset listing is unavailable."
		if errors.Is(st.Err, ErrTimeout) {
			v.Message = "The asset listing did not respond in time."
		}
	case Empty:
		v.Message = fmt.Sprintf("No %s files found in %s.", g.lister.Extension(), s.Query.Folder)
	case Populated:
		cards := s.Cards()
		v.Cards = make([]CardView, len(cards))
		for i, c := range cards {
			img := ImageURL(s.Query, c.Entry)
			v.Cards[i] = CardView{
				Card:       c,
				Rank:       i + 1,
				ImageURL:   img,
				EditorURL:  EditorURL(c),
				Size:       humanize.Bytes(uint64(max(c.Entry.Size, 0))),
				AttemptURL: img + "&attempt=1",
				Attempts:   imgchain.CandidateCount,
			}
		}
	}
	return v
}

// ImageURL is the image endpoint for one entry.
func ImageURL(q listing.Query, e models.AssetEntry) string {
	v := url.Values{
		"repo":   {q.Repo},
		"branch": {q.Branch},
		"path":   {e.Path},
		"name":   {e.Name},
	}
	if e.DownloadURL != nil {
		v.Set("download_url", *e.DownloadURL)
	}
	return "/images?" + v.Encode()
}

// EditorURL opens the editor on a card's markup. Entries without a
// download URL open the editor in its error state.
func EditorURL(c models.Card) string {
	v := url.Values{"title": {c.DisplayTitle}}
	if c.Entry.DownloadURL != nil {
		v.Set("url", *c.Entry.DownloadURL)
	}
	return "/editor?" + v.Encode()
}

// Age is how long ago the session started, for logs and headers.
func (s *Session) Age() string {
	return humanize.RelTime(s.Created, time.Now(), "ago", "from now")
}
