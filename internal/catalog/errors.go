package catalog

import "errors"

// ErrSearchFailed indicates the catalog could not be reached or answered
// with a non-OK status. The query is not retried.
var ErrSearchFailed = errors.New("catalog search failed")
