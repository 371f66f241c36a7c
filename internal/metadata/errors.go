package metadata

import "errors"

// ErrResolveFailed indicates at least one lookup in a batch failed at the
// transport level. Ids without a match are not failures.
var ErrResolveFailed = errors.New("metadata resolution failed")
