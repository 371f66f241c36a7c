package pipeline

import (
	"github.com/vmunix/reelscout/internal/metadata"
)

// Phase is the pipeline's position in the search → resolve cycle.
type Phase int

const (
	PhaseIdle           Phase = iota // no query
	PhaseSearching                   // catalog search in flight
	PhaseResolving                   // metadata batch in flight
	PhaseReady                       // metadata settled, possibly partial
	PhaseSearchFailed                // catalog search failed
	PhaseMetadataFailed              // metadata batch failed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseResolving:
		return "resolving"
	case PhaseReady:
		return "ready"
	case PhaseSearchFailed:
		return "search_failed"
	case PhaseMetadataFailed:
		return "metadata_failed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the pipeline. Reduce never mutates a
// State it was given; IDs and Metadata are replaced, not edited.
type State struct {
	Query          string          // raw input
	DebouncedQuery string          // input after the quiescence window
	IDs            []string        // extracted ids in search-result order
	Metadata       metadata.Movies // resolved ids only
	SearchErr      error
	MetadataErr    error
	Phase          Phase
	Generation     uint64 // bumped whenever the debounced query moves
}

// IsLoading reports whether a fetch for the current query is in flight.
func (s State) IsLoading() bool {
	return s.Phase == PhaseSearching || s.Phase == PhaseResolving
}

// Settled reports whether the raw input has been debounced and every fetch
// for it has finished.
func (s State) Settled() bool {
	return !s.IsLoading() && s.Query == s.DebouncedQuery
}

// Err returns the error for a failed phase, if any.
func (s State) Err() error {
	if s.SearchErr != nil {
		return s.SearchErr
	}
	return s.MetadataErr
}

// Lookup returns the resolved metadata for id.
func (s State) Lookup(id string) (metadata.Movie, bool) {
	return s.Metadata.Lookup(id)
}

// Results returns the ids paired with their metadata, in result order.
// Resolved is false for ids that have no metadata.
func (s State) Results() []Result {
	results := make([]Result, len(s.IDs))
	for i, id := range s.IDs {
		movie, ok := s.Metadata[id]
		results[i] = Result{ID: id, Movie: movie, Resolved: ok}
	}
	return results
}

// Result is one row of a settled search.
type Result struct {
	ID       string
	Movie    metadata.Movie
	Resolved bool
}
