package session

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmunix/reelscout/internal/metadata"
	"github.com/vmunix/reelscout/internal/pipeline"
	"github.com/vmunix/reelscout/internal/watchlist"
)

func TestRenderer_Ready(t *testing.T) {
	r := NewRenderer("https://image.tmdb.org/t/p", "w500")
	s := pipeline.State{
		DebouncedQuery: "godzilla",
		Phase:          pipeline.PhaseReady,
		IDs:            []string{"tt0087344", "tt0047034"},
		Metadata: metadata.Movies{
			"tt0087344": {IMDbID: "tt0087344", Title: "Godzilla 1985", PosterPath: "/g.jpg"},
		},
	}

	var buf bytes.Buffer
	r.State(&buf, s, func(id string) bool { return id == "tt0087344" })

	out := buf.String()
	assert.Contains(t, out, "1. [*] Godzilla 1985  tt0087344")
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/g.jpg")
	assert.Contains(t, out, "2. [ ] Unknown  tt0047034")
}

func TestRenderer_ReleaseYear(t *testing.T) {
	r := NewRenderer("https://image.tmdb.org/t/p", "w500")
	s := pipeline.State{
		DebouncedQuery: "godzilla",
		Phase:          pipeline.PhaseReady,
		IDs:            []string{"tt0087344", "tt0047034"},
		Metadata: metadata.Movies{
			"tt0087344": {IMDbID: "tt0087344", Title: "Godzilla 1985", Year: 1984},
			"tt0047034": {IMDbID: "tt0047034", Year: 1955},
		},
	}

	var buf bytes.Buffer
	r.State(&buf, s, nil)

	out := buf.String()
	assert.Contains(t, out, "1. [ ] Godzilla 1985 (1984)  tt0087344")
	assert.Contains(t, out, "2. [ ] Unknown  tt0047034")
	assert.NotContains(t, out, "https://", "no poster line without artwork")
}

func TestRenderer_ResolvingShowsPlaceholders(t *testing.T) {
	r := NewRenderer("", "")
	s := pipeline.State{
		Phase:    pipeline.PhaseResolving,
		IDs:      []string{"tt0087344"},
		Metadata: metadata.Movies{},
	}

	var buf bytes.Buffer
	r.State(&buf, s, nil)
	assert.Contains(t, buf.String(), "loading tt0087344...")
}

func TestRenderer_Phases(t *testing.T) {
	r := NewRenderer("", "")

	tests := []struct {
		name  string
		state pipeline.State
		want  string
	}{
		{"idle", pipeline.State{Phase: pipeline.PhaseIdle}, ""},
		{"searching", pipeline.State{Phase: pipeline.PhaseSearching, DebouncedQuery: "alien"}, "searching \"alien\"...\n"},
		{"search failed", pipeline.State{Phase: pipeline.PhaseSearchFailed, SearchErr: errors.New("boom")}, "search failed: boom\n"},
		{"no results", pipeline.State{Phase: pipeline.PhaseReady, DebouncedQuery: "xyz"}, "no results for \"xyz\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r.State(&buf, tt.state, nil)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderer_MetadataFailedKeepsIDs(t *testing.T) {
	r := NewRenderer("", "")
	s := pipeline.State{
		Phase:       pipeline.PhaseMetadataFailed,
		MetadataErr: errors.New("tmdb down"),
		IDs:         []string{"tt0087344"},
	}

	var buf bytes.Buffer
	r.State(&buf, s, nil)
	assert.Contains(t, buf.String(), "metadata lookup failed: tmdb down")
	assert.Contains(t, buf.String(), "Unknown  tt0087344")
}

func TestRenderer_Watchlist(t *testing.T) {
	r := NewRenderer("https://img", "w92")

	var buf bytes.Buffer
	r.Watchlist(&buf, nil)
	assert.Equal(t, "watchlist is empty\n", buf.String())

	buf.Reset()
	r.Watchlist(&buf, []watchlist.Entry{
		{ID: "tt0087344", Title: "Godzilla 1985", PosterPath: "/g.jpg"},
		{ID: "tt0047034"},
	})
	assert.Contains(t, buf.String(), "1. Godzilla 1985  tt0087344")
	assert.Contains(t, buf.String(), "https://img/w92/g.jpg")
	assert.Contains(t, buf.String(), "2. Unknown  tt0047034")
}
