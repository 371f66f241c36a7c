package tmdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := newCache(time.Hour)

	// Miss
	_, ok := c.get("tt0092991")
	assert.False(t, ok, "empty cache should miss")

	c.set("tt0092991", &Movie{ID: 1, Title: "Godzilla 1985"})

	got, ok := c.get("tt0092991")
	require.True(t, ok, "should hit after set")
	assert.Equal(t, "Godzilla 1985", got.Title)

	_, ok = c.get("tt0000001")
	assert.False(t, ok, "different ID should miss")
}

func TestCache_Expiry(t *testing.T) {
	c := newCache(10 * time.Millisecond)

	c.set("tt0092991", &Movie{ID: 1, Title: "Godzilla 1985"})

	_, ok := c.get("tt0092991")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.get("tt0092991")
	assert.False(t, ok, "should miss after TTL")
}

func TestCache_Disabled(t *testing.T) {
	c := newCache(0)

	c.set("tt0092991", &Movie{ID: 1, Title: "Godzilla 1985"})

	_, ok := c.get("tt0092991")
	assert.False(t, ok, "zero TTL should never hit")
}
