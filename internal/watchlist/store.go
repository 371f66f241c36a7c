package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vmunix/reelscout/internal/events"
	"github.com/vmunix/reelscout/pkg/titlematch"
)

// StorageKey is the namespace the watchlist is persisted under.
const StorageKey = "watchlist"

// Store is the watchlist. All mutations go through one mutex and are
// flushed to the persister before they become visible.
type Store struct {
	mu        sync.Mutex
	persister Persister
	entries   []Entry
	index     map[string]struct{}
	bus       *events.Bus
	log       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBus publishes additions and removals on bus.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Open hydrates a Store from p. Missing or unreadable data yields an empty
// watchlist; it is never fatal.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		index:     make(map[string]struct{}),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	data, err := s.persister.Load(ctx, StorageKey)
	if err != nil {
		s.log.Warn("watchlist storage unavailable, starting empty", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var stored []Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("watchlist data corrupt, starting empty", "error", err)
		return
	}

	for _, e := range stored {
		if e.ID == "" {
			continue
		}
		if _, dup := s.index[e.ID]; dup {
			continue
		}
		s.index[e.ID] = struct{}{}
		s.entries = append(s.entries, e)
	}
	s.log.Debug("watchlist loaded", "entries", len(s.entries))
}

// Toggle removes id if it is on the watchlist, otherwise adds it using the
// metadata from src. An id src has not resolved is reported as
// ErrMetadataNotFound and leaves the watchlist unchanged.
func (s *Store) Toggle(ctx context.Context, id string, src Lookup) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		if err := s.removeLocked(ctx, id); err != nil {
			return ChangeNone, err
		}
		return ChangeRemoved, nil
	}

	var movie struct {
		title, poster string
		ok            bool
	}
	if src != nil {
		m, ok := src.Lookup(id)
		movie.title, movie.poster, movie.ok = m.Title, m.PosterPath, ok
	}
	if !movie.ok {
		s.log.Warn("movie not resolved, not adding to watchlist", "imdb_id", id)
		return ChangeNone, fmt.Errorf("%w: %s", ErrMetadataNotFound, id)
	}

	entry := Entry{ID: id, Title: movie.title, PosterPath: movie.poster}
	next := append(slices.Clone(s.entries), entry)
	if err := s.flushLocked(ctx, next); err != nil {
		return ChangeNone, err
	}

	s.entries = next
	s.index[id] = struct{}{}
	s.log.Info("added to watchlist", "imdb_id", id, "title", entry.Title)

	s.publish(&events.WatchlistEntryAdded{
		BaseEvent:  events.NewBaseEvent(events.EventWatchlistEntryAdded, "movie", id),
		Title:      entry.Title,
		PosterPath: entry.PosterPath,
		Size:       len(s.entries),
	})
	return ChangeAdded, nil
}

// Remove deletes id from the watchlist.
// Returns ErrNotFound if it is not on it.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.removeLocked(ctx, id)
}

func (s *Store) removeLocked(ctx context.Context, id string) error {
	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
	removed := s.entries[i]
	next := slices.Delete(slices.Clone(s.entries), i, i+1)

	if err := s.flushLocked(ctx, next); err != nil {
		return err
	}

	s.entries = next
	delete(s.index, id)
	s.log.Info("removed from watchlist", "imdb_id", id, "title", removed.Title)

	s.publish(&events.WatchlistEntryRemoved{
		BaseEvent: events.NewBaseEvent(events.EventWatchlistEntryRemoved, "movie", id),
		Title:     removed.Title,
		Size:      len(s.entries),
	})
	return nil
}

func (s *Store) flushLocked(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}
	if err := s.persister.Save(ctx, StorageKey, data); err != nil {
		s.log.Error("watchlist flush failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Contains reports whether id is on the watchlist.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Entries returns the watchlist in the order movies were added.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Len returns the number of saved movies.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Find returns the entry whose title best matches title.
func (s *Store) Find(title string) (Entry, titlematch.Result, bool) {
	entries := s.Entries()

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}

	result := titlematch.Match(title, titles)
	if result.Index < 0 {
		return Entry{}, result, false
	}
	return entries[result.Index], result, true
}

func (s *Store) publish(e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), e); err != nil {
		s.log.Warn("publish watchlist event", "type", e.EventType(), "error", err)
	}
}
