package session

import (
	"fmt"
	"io"

	"github.com/vmunix/reelscout/internal/pipeline"
	"github.com/vmunix/reelscout/internal/tmdb"
	"github.com/vmunix/reelscout/internal/watchlist"
)

// UnknownTitle is shown for results without metadata.
const UnknownTitle = "Unknown"

// Renderer prints pipeline states and the watchlist as plain text.
type Renderer struct {
	imageBaseURL string
	posterSize   string
}

// NewRenderer creates a renderer that builds poster links from imageBaseURL
// and posterSize (for example "w500").
func NewRenderer(imageBaseURL, posterSize string) *Renderer {
	if posterSize == "" {
		posterSize = "w500"
	}
	return &Renderer{imageBaseURL: imageBaseURL, posterSize: posterSize}
}

// PosterURL returns the full poster link, or "" when there is no artwork.
func (r *Renderer) PosterURL(posterPath string) string {
	return tmdb.PosterURL(r.imageBaseURL, r.posterSize, posterPath)
}

// State prints s. saved marks ids that are on the watchlist; it may be nil.
func (r *Renderer) State(w io.Writer, s pipeline.State, saved func(id string) bool) {
	switch s.Phase {
	case pipeline.PhaseIdle:
		return
	case pipeline.PhaseSearching:
		fmt.Fprintf(w, "searching %q...\n", s.DebouncedQuery)
		return
	case pipeline.PhaseSearchFailed:
		fmt.Fprintf(w, "search failed: %v\n", s.SearchErr)
		return
	case pipeline.PhaseMetadataFailed:
		fmt.Fprintf(w, "metadata lookup failed: %v\n", s.MetadataErr)
	}

	if len(s.IDs) == 0 {
		fmt.Fprintf(w, "no results for %q\n", s.DebouncedQuery)
		return
	}

	for i, res := range s.Results() {
		mark := " "
		if saved != nil && saved(res.ID) {
			mark = "*"
		}

		if !res.Resolved && s.Phase == pipeline.PhaseResolving {
			fmt.Fprintf(w, "%3d. [%s] loading %s...\n", i+1, mark, res.ID)
			continue
		}

		title := res.Movie.Title
		if title == "" {
			title = UnknownTitle
		} else if res.Movie.Year > 0 {
			title = fmt.Sprintf("%s (%d)", title, res.Movie.Year)
		}
		fmt.Fprintf(w, "%3d. [%s] %s  %s\n", i+1, mark, title, res.ID)
		if res.Movie.HasPoster() {
			fmt.Fprintf(w, "          %s\n", r.PosterURL(res.Movie.PosterPath))
		}
	}
}

// Watchlist prints the saved movies in insertion order.
func (r *Renderer) Watchlist(w io.Writer, entries []watchlist.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "watchlist is empty")
		return
	}
	for i, e := range entries {
		title := e.Title
		if title == "" {
			title = UnknownTitle
		}
		fmt.Fprintf(w, "%3d. %s  %s\n", i+1, title, e.ID)
		if poster := r.PosterURL(e.PosterPath); poster != "" {
			fmt.Fprintf(w, "          %s\n", poster)
		}
	}
}
