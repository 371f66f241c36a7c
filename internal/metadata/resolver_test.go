package metadata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelscout/internal/tmdb"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFinder answers from a fixed table; ids listed in fail return an error.
type fakeFinder struct {
	mu       sync.Mutex
	movies   map[string]*tmdb.Movie
	fail     map[string]error
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    []string
}

func (f *fakeFinder) Find(ctx context.Context, imdbID string) (*tmdb.Movie, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, imdbID)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[imdbID]; ok {
		return nil, err
	}
	if m, ok := f.movies[imdbID]; ok {
		return m, nil
	}
	return nil, tmdb.ErrNotFound
}

func TestResolver_Resolve(t *testing.T) {
	finder := &fakeFinder{movies: map[string]*tmdb.Movie{
		"tt0092991": {ID: 11507, Title: "Godzilla 1985", PosterPath: "/x.jpg"},
	}}
	r := NewResolver(finder, WithLogger(testLogger()))

	got, err := r.Resolve(context.Background(), []string{"tt0092991"})
	require.NoError(t, err)
	assert.Equal(t, Movies{
		"tt0092991": {IMDbID: "tt0092991", Title: "Godzilla 1985", PosterPath: "/x.jpg"},
	}, got)
}

func TestResolver_Resolve_ReleaseYear(t *testing.T) {
	finder := &fakeFinder{movies: map[string]*tmdb.Movie{
		"tt0092991": {ID: 11507, Title: "Godzilla 1985", ReleaseDate: "1984-12-15", PosterPath: "/x.jpg"},
		"tt0000001": {ID: 1, Title: "Undated", ReleaseDate: "TBA"},
	}}
	r := NewResolver(finder, WithLogger(testLogger()))

	got, err := r.Resolve(context.Background(), []string{"tt0092991", "tt0000001"})
	require.NoError(t, err)
	assert.Equal(t, 1984, got["tt0092991"].Year)
	assert.Zero(t, got["tt0000001"].Year)
	assert.True(t, got["tt0092991"].HasPoster())
}

func TestResolver_Resolve_PartialMatch(t *testing.T) {
	finder := &fakeFinder{movies: map[string]*tmdb.Movie{
		"tt0000001": {ID: 1, Title: "Found"},
	}}
	r := NewResolver(finder, WithLogger(testLogger()))

	got, err := r.Resolve(context.Background(), []string{"tt0000001", "tt0000002"})
	require.NoError(t, err, "an unmatched id is not an error")
	assert.Len(t, got, 1)
	assert.Contains(t, got, "tt0000001")
	assert.NotContains(t, got, "tt0000002")

	movie, ok := got.Lookup("tt0000001")
	require.True(t, ok)
	assert.False(t, movie.HasPoster())
}

func TestResolver_Resolve_TransportFailure(t *testing.T) {
	finder := &fakeFinder{
		movies: map[string]*tmdb.Movie{"tt0000001": {ID: 1, Title: "Found"}},
		fail:   map[string]error{"tt0000002": errors.New("connection reset")},
	}
	r := NewResolver(finder, WithLogger(testLogger()))

	got, err := r.Resolve(context.Background(), []string{"tt0000001", "tt0000002"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrResolveFailed)
	assert.Contains(t, err.Error(), "tt0000002")
}

func TestResolver_Resolve_Empty(t *testing.T) {
	finder := &fakeFinder{}
	r := NewResolver(finder, WithLogger(testLogger()))

	got, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, finder.calls)
}

func TestResolver_Resolve_RunsConcurrently(t *testing.T) {
	finder := &fakeFinder{delay: 20 * time.Millisecond}
	r := NewResolver(finder, WithConcurrency(4), WithLogger(testLogger()))

	ids := []string{"tt1", "tt2", "tt3", "tt4", "tt5", "tt6", "tt7", "tt8"}
	_, err := r.Resolve(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, finder.calls, len(ids), "one lookup per id")
	assert.Greater(t, finder.peak.Load(), int32(1), "lookups should overlap")
	assert.LessOrEqual(t, finder.peak.Load(), int32(4), "concurrency bound respected")
}
