package pipeline

import (
	"strings"

	"github.com/vmunix/reelscout/internal/metadata"
)

// Action is an event applied to State by Reduce.
type Action interface {
	action()
}

// InputChanged records new raw input. It never triggers a fetch by itself.
type InputChanged struct {
	Query string
}

// QuerySettled is emitted when input has stayed unchanged for the
// quiescence window.
type QuerySettled struct {
	Query string
}

// SearchSucceeded carries the ids extracted from a catalog search.
type SearchSucceeded struct {
	Generation uint64
	IDs        []string
}

// SearchFailed reports a failed catalog search.
type SearchFailed struct {
	Generation uint64
	Err        error
}

// MetadataResolved carries the settled metadata batch.
type MetadataResolved struct {
	Generation uint64
	Metadata   metadata.Movies
}

// MetadataFailed reports a failed metadata batch.
type MetadataFailed struct {
	Generation uint64
	Err        error
}

func (InputChanged) action()     {}
func (QuerySettled) action()     {}
func (SearchSucceeded) action()  {}
func (SearchFailed) action()     {}
func (MetadataResolved) action() {}
func (MetadataFailed) action()   {}

// Reduce applies a to s and returns the next state.
func Reduce(s State, a Action) State {
	if Stale(s, a) {
		return s
	}

	switch a := a.(type) {
	case InputChanged:
		s.Query = a.Query
		return s

	case QuerySettled:
		if a.Query == s.DebouncedQuery {
			return s
		}
		next := State{
			Query:          s.Query,
			DebouncedQuery: a.Query,
			Generation:     s.Generation + 1,
		}
		if isEmptyQuery(a.Query) {
			next.Phase = PhaseIdle
			next.IDs = []string{}
			next.Metadata = metadata.Movies{}
			return next
		}
		// Previous results stay visible until the new search answers.
		next.Phase = PhaseSearching
		next.IDs = s.IDs
		next.Metadata = s.Metadata
		return next

	case SearchSucceeded:
		s.IDs = append([]string{}, a.IDs...)
		s.Metadata = metadata.Movies{}
		if len(a.IDs) == 0 {
			s.Phase = PhaseReady
		} else {
			s.Phase = PhaseResolving
		}
		return s

	case SearchFailed:
		s.Phase = PhaseSearchFailed
		s.SearchErr = a.Err
		s.IDs = []string{}
		s.Metadata = metadata.Movies{}
		return s

	case MetadataResolved:
		s.Phase = PhaseReady
		s.Metadata = make(metadata.Movies, len(a.Metadata))
		for id, m := range a.Metadata {
			s.Metadata[id] = m
		}
		return s

	case MetadataFailed:
		s.Phase = PhaseMetadataFailed
		s.MetadataErr = a.Err
		s.Metadata = metadata.Movies{}
		return s
	}

	return s
}

// Stale reports whether a is a result for a query that is no longer
// current, or that arrives in a phase which did not ask for it.
func Stale(s State, a Action) bool {
	switch a := a.(type) {
	case SearchSucceeded:
		return a.Generation != s.Generation || s.Phase != PhaseSearching
	case SearchFailed:
		return a.Generation != s.Generation || s.Phase != PhaseSearching
	case MetadataResolved:
		return a.Generation != s.Generation || s.Phase != PhaseResolving
	case MetadataFailed:
		return a.Generation != s.Generation || s.Phase != PhaseResolving
	}
	return false
}

func isEmptyQuery(q string) bool {
	return strings.TrimSpace(q) == ""
}
