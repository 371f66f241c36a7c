package watchlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelscout/internal/events"
	"github.com/vmunix/reelscout/internal/metadata"
	"github.com/vmunix/reelscout/pkg/titlematch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var godzilla = metadata.Movies{
	"tt0087344": {IMDbID: "tt0087344", Title: "Godzilla 1985", PosterPath: "/g.jpg"},
	"tt0047034": {IMDbID: "tt0047034", Title: "Godzilla", PosterPath: ""},
}

// failingPersister fails every Save after the first n.
type failingPersister struct {
	*MemoryPersister
	allowed int
}

func (f *failingPersister) Save(ctx context.Context, key string, data []byte) error {
	if f.allowed <= 0 {
		return errors.New("disk full")
	}
	f.allowed--
	return f.MemoryPersister.Save(ctx, key, data)
}

type brokenPersister struct{}

func (brokenPersister) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("permission denied")
}

func (brokenPersister) Save(context.Context, string, []byte) error {
	return errors.New("permission denied")
}

func TestStore_ToggleAddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := Open(ctx, p, WithLogger(testLogger()))

	change, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)
	assert.Equal(t, ChangeAdded, change)
	assert.True(t, s.Contains("tt0087344"))
	assert.Equal(t, []Entry{{ID: "tt0087344", Title: "Godzilla 1985", PosterPath: "/g.jpg"}}, s.Entries())

	data, err := p.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"imdbId":"tt0087344","title":"Godzilla 1985","poster_path":"/g.jpg"}]`, string(data))

	change, err = s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)
	assert.Equal(t, ChangeRemoved, change)
	assert.False(t, s.Contains("tt0087344"))
	assert.Empty(t, s.Entries())

	data, err = p.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestStore_ToggleKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryPersister(), WithLogger(testLogger()))

	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)
	_, err = s.Toggle(ctx, "tt0047034", godzilla)
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "tt0087344", entries[0].ID)
	assert.Equal(t, "tt0047034", entries[1].ID)
	assert.Equal(t, "", entries[1].PosterPath)
}

func TestStore_ToggleUnresolved(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := Open(ctx, p, WithLogger(testLogger()))

	change, err := s.Toggle(ctx, "tt9999999", godzilla)
	assert.ErrorIs(t, err, ErrMetadataNotFound)
	assert.Equal(t, ChangeNone, change)
	assert.Equal(t, 0, s.Len())

	_, err = s.Toggle(ctx, "tt0087344", nil)
	assert.ErrorIs(t, err, ErrMetadataNotFound)

	data, err := p.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Nil(t, data, "nothing should be written")
}

func TestStore_RemoveDoesNotNeedMetadata(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryPersister(), WithLogger(testLogger()))

	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	change, err := s.Toggle(ctx, "tt0087344", metadata.Movies{})
	require.NoError(t, err)
	assert.Equal(t, ChangeRemoved, change)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()

	s := Open(ctx, p, WithLogger(testLogger()))
	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	reopened := Open(ctx, p, WithLogger(testLogger()))
	assert.True(t, reopened.Contains("tt0087344"))
	assert.Equal(t, s.Entries(), reopened.Entries())
}

func TestStore_HydrateCorruptData(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	require.NoError(t, p.Save(ctx, StorageKey, []byte(`{not json`)))

	s := Open(ctx, p, WithLogger(testLogger()))
	assert.Equal(t, 0, s.Len())

	// Still usable after a corrupt load.
	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStore_HydrateUnavailableStorage(t *testing.T) {
	s := Open(context.Background(), brokenPersister{}, WithLogger(testLogger()))
	assert.Equal(t, 0, s.Len())
}

func TestStore_HydrateCollapsesDuplicates(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	require.NoError(t, p.Save(ctx, StorageKey, []byte(`[
		{"imdbId":"tt0087344","title":"Godzilla 1985","poster_path":"/g.jpg"},
		{"imdbId":"tt0087344","title":"Godzilla 1985 (dup)","poster_path":""},
		{"imdbId":"","title":"broken","poster_path":""},
		{"imdbId":"tt0047034","title":"Godzilla","poster_path":""}
	]`)))

	s := Open(ctx, p, WithLogger(testLogger()))
	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Godzilla 1985", entries[0].Title)
	assert.Equal(t, "tt0047034", entries[1].ID)
}

func TestStore_FlushFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{MemoryPersister: NewMemoryPersister(), allowed: 1}
	s := Open(ctx, p, WithLogger(testLogger()))

	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	change, err := s.Toggle(ctx, "tt0047034", godzilla)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, ChangeNone, change)
	assert.False(t, s.Contains("tt0047034"))

	change, err = s.Toggle(ctx, "tt0087344", godzilla)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, ChangeNone, change)
	assert.True(t, s.Contains("tt0087344"), "failed removal must keep the entry")
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryPersister(), WithLogger(testLogger()))

	err := s.Remove(ctx, "tt0087344")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "tt0087344"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(testLogger())
	defer bus.Close()

	added := bus.Subscribe(4, events.EventWatchlistEntryAdded)
	removed := bus.Subscribe(4, events.EventWatchlistEntryRemoved)

	s := Open(ctx, NewMemoryPersister(), WithBus(bus), WithLogger(testLogger()))

	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	select {
	case e := <-added:
		ev, ok := e.(*events.WatchlistEntryAdded)
		require.True(t, ok)
		assert.Equal(t, "tt0087344", ev.EntityID())
		assert.Equal(t, "Godzilla 1985", ev.Title)
		assert.Equal(t, 1, ev.Size)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for added event")
	}

	_, err = s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	select {
	case e := <-removed:
		ev, ok := e.(*events.WatchlistEntryRemoved)
		require.True(t, ok)
		assert.Equal(t, 0, ev.Size)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for removed event")
	}
}

func TestStore_Find(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryPersister(), WithLogger(testLogger()))

	_, _, ok := s.Find("godzilla")
	assert.False(t, ok, "empty watchlist has nothing to find")

	_, err := s.Toggle(ctx, "tt0087344", godzilla)
	require.NoError(t, err)

	entry, result, ok := s.Find("Godzilla 1985")
	require.True(t, ok)
	assert.Equal(t, "tt0087344", entry.ID)
	assert.Equal(t, titlematch.ConfidenceHigh, result.Confidence)
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "added", ChangeAdded.String())
	assert.Equal(t, "removed", ChangeRemoved.String())
	assert.Equal(t, "none", ChangeNone.String())
}
