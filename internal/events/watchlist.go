// internal/events/watchlist.go
package events

// Event types for the watchlist.
const (
	EventWatchlistEntryAdded   = "watchlist.entry_added"
	EventWatchlistEntryRemoved = "watchlist.entry_removed"
)

// WatchlistEntryAdded is emitted when a movie is saved to the watchlist.
type WatchlistEntryAdded struct {
	BaseEvent
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
	Size       int    `json:"size"`
}

// WatchlistEntryRemoved is emitted when a movie leaves the watchlist.
type WatchlistEntryRemoved struct {
	BaseEvent
	Title string `json:"title"`
	Size  int    `json:"size"`
}
