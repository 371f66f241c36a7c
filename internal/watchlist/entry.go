// Package watchlist keeps the user's saved movies, durable across restarts.
package watchlist

import "github.com/vmunix/reelscout/internal/metadata"

// Entry is one saved movie. The JSON layout is the one stored on disk.
type Entry struct {
	ID         string `json:"imdbId"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Lookup provides metadata for ids that have been resolved.
// pipeline.State and metadata.Movies both satisfy it.
type Lookup interface {
	Lookup(id string) (metadata.Movie, bool)
}

// Change describes what a toggle did.
type Change int

const (
	ChangeNone Change = iota
	ChangeAdded
	ChangeRemoved
)

func (c Change) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "none"
	}
}
