// Package metadata resolves IMDb ids to normalized movie metadata.
package metadata

// Movie is the normalized metadata kept for a resolved id.
type Movie struct {
	IMDbID     string `json:"imdb_id"`
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"` // zero when the release date is unknown
	PosterPath string `json:"poster_path,omitempty"` // empty when the movie has no artwork
}

// HasPoster reports whether artwork is available.
func (m Movie) HasPoster() bool {
	return m.PosterPath != ""
}

// Movies maps IMDb ids to resolved metadata.
type Movies map[string]Movie

// Lookup returns the metadata for id, if resolved.
func (m Movies) Lookup(id string) (Movie, bool) {
	movie, ok := m[id]
	return movie, ok
}
