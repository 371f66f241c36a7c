package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vmunix/reelscout/internal/pipeline"
	"github.com/vmunix/reelscout/internal/session"
)

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

// resultJSON is the --json shape of a search result.
type resultJSON struct {
	IMDbID      string `json:"imdb_id"`
	Title       string `json:"title"`
	Year        int    `json:"year,omitempty"`
	PosterURL   string `json:"poster_url,omitempty"`
	Resolved    bool   `json:"resolved"`
	OnWatchlist bool   `json:"on_watchlist"`
}

type searchJSON struct {
	Query   string       `json:"query"`
	Phase   string       `json:"phase"`
	Error   string       `json:"error,omitempty"`
	Results []resultJSON `json:"results"`
}

func toSearchJSON(s pipeline.State, r *session.Renderer, saved func(string) bool) searchJSON {
	out := searchJSON{
		Query:   s.DebouncedQuery,
		Phase:   s.Phase.String(),
		Results: []resultJSON{},
	}
	if err := s.Err(); err != nil {
		out.Error = err.Error()
	}
	for _, res := range s.Results() {
		title := res.Movie.Title
		if title == "" {
			title = session.UnknownTitle
		}
		out.Results = append(out.Results, resultJSON{
			IMDbID:      res.ID,
			Title:       title,
			Year:        res.Movie.Year,
			PosterURL:   r.PosterURL(res.Movie.PosterPath),
			Resolved:    res.Resolved,
			OnWatchlist: saved(res.ID),
		})
	}
	return out
}
