package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

// imdbIDPattern matches a bare IMDb title id such as "tt0092991".
var imdbIDPattern = regexp.MustCompile(`^tt\d+$`)

// ExtractID returns the first IMDb id found in the hit's cross-reference
// links. Hits without one are expected; the catalog's data is incomplete.
func ExtractID(hit Hit) (string, bool) {
	for _, link := range hit.IMDbLinks {
		if id, ok := idFromLink(link); ok {
			return id, true
		}
	}
	return "", false
}

func idFromLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}

	path := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		path = u.Path
	}

	for _, part := range strings.Split(path, "/") {
		if imdbIDPattern.MatchString(part) {
			return part, true
		}
	}
	return "", false
}

// ExtractIDs derives the ordered, deduplicated id list for a result set.
func ExtractIDs(hits []Hit) []string {
	ids := make([]string, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		id, ok := ExtractID(hit)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
