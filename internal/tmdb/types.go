// Package tmdb provides a client for The Movie Database API.
package tmdb

import (
	"strconv"
	"strings"
)

// DefaultImageBaseURL is the TMDB image CDN root.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// Movie represents TMDB movie metadata as returned by the find endpoint.
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"` // "1985-08-23"
	PosterPath    string  `json:"poster_path"`  // "/abc123.jpg", empty when TMDB has no artwork
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
}

// findResponse is the envelope of /3/find/{external_id}.
type findResponse struct {
	MovieResults []Movie `json:"movie_results"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// PosterURL builds a full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func PosterURL(baseURL, size, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + size + posterPath
}
