// Package catalog queries the Netzkino catalog and extracts IMDb ids from its hits.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.netzkino.de.simplecache.net"
	defaultDevice  = "devtest"
	searchPath     = "/capi-2.0a/search"

	// imdbLinkField is the custom field holding IMDb cross-reference URLs.
	imdbLinkField = "IMDb-Link"
)

// Hit is one catalog entry returned by a search.
type Hit struct {
	ID        int64
	Title     string
	Slug      string
	IMDbLinks []string
}

// searchResponse is the JSON envelope returned by the search endpoint.
type searchResponse struct {
	Posts []post `json:"posts"`
}

type post struct {
	ID           int64                      `json:"id"`
	Title        string                     `json:"title"`
	Slug         string                     `json:"slug"`
	CustomFields map[string]json.RawMessage `json:"custom_fields"`
}

// links decodes the IMDb link field, which the catalog sends as a list of
// strings but occasionally as a bare string or not at all.
func (p post) links() []string {
	raw, ok := p.CustomFields[imdbLinkField]
	if !ok {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// Client is an HTTP client for the catalog search API.
type Client struct {
	baseURL    string
	device     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithDevice sets the device parameter sent with every search.
func WithDevice(device string) Option {
	return func(c *Client) {
		c.device = device
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		device:  defaultDevice,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncodeQuery turns free text into the catalog's query format: words are
// escaped individually and joined with '+'.
func EncodeQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return strings.Join(words, "+")
}

// Search queries the catalog and returns the raw hits in result order.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	encoded := EncodeQuery(query)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty query", ErrSearchFailed)
	}

	reqURL := fmt.Sprintf("%s%s?q=%s&d=%s", c.baseURL, searchPath, encoded, url.QueryEscape(c.device))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSearchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrSearchFailed, resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	hits := make([]Hit, len(body.Posts))
	for i, p := range body.Posts {
		hits[i] = Hit{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			IMDbLinks: p.links(),
		}
	}

	c.log.Debug("catalog search", "query", query, "results", len(hits), "duration_ms", time.Since(start).Milliseconds())
	return hits, nil
}
