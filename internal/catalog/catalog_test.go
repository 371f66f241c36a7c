package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const godzillaResponse = `{
  "posts": [
    {
      "id": 1001,
      "title": "Godzilla 1985",
      "slug": "godzilla-1985",
      "custom_fields": {
        "IMDb-Link": ["https://www.imdb.com/title/tt0092991/"],
        "FSK": ["12"]
      }
    },
    {
      "id": 1002,
      "title": "Godzilla Doku",
      "slug": "godzilla-doku",
      "custom_fields": {
        "FSK": ["0"]
      }
    }
  ]
}`

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/capi-2.0a/search", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "q=godzilla+1985")
		assert.Equal(t, "godzilla 1985", r.URL.Query().Get("q"))
		assert.Equal(t, "devtest", r.URL.Query().Get("d"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(godzillaResponse))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	hits, err := client.Search(context.Background(), "godzilla 1985")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, int64(1001), hits[0].ID)
	assert.Equal(t, "Godzilla 1985", hits[0].Title)
	assert.Equal(t, []string{"https://www.imdb.com/title/tt0092991/"}, hits[0].IMDbLinks)
	assert.Empty(t, hits[1].IMDbLinks)
}

func TestClient_Search_CustomDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "www", r.URL.Query().Get("d"))
		_, _ = w.Write([]byte(`{"posts":[]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL+"/"), WithDevice("www"))
	hits, err := client.Search(context.Background(), "alien")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestClient_Search_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	hits, err := client.Search(context.Background(), "godzilla")
	assert.Nil(t, hits)
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Search_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "godzilla")
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestClient_Search_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts": [`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "godzilla")
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))
	_, err := client.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"godzilla", "godzilla"},
		{"the matrix", "the+matrix"},
		{"  spaced   out  ", "spaced+out"},
		{"fast & furious", "fast+%26+furious"},
		{"rückkehr", "r%C3%BCckkehr"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeQuery(tt.input))
		})
	}
}

func TestPostLinks_SingleString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts":[{"id":1,"title":"X","custom_fields":{"IMDb-Link":"https://www.imdb.com/title/tt0000001/"}}]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	hits, err := client.Search(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"https://www.imdb.com/title/tt0000001/"}, hits[0].IMDbLinks)
}
