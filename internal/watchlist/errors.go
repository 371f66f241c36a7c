package watchlist

import "errors"

var (
	// ErrMetadataNotFound indicates a toggle for a movie whose metadata has
	// not been resolved. Nothing is added.
	ErrMetadataNotFound = errors.New("movie metadata not resolved")

	// ErrStorageUnavailable indicates the persister could not be written.
	ErrStorageUnavailable = errors.New("watchlist storage unavailable")

	// ErrNotFound indicates the movie is not on the watchlist.
	ErrNotFound = errors.New("not on watchlist")
)
