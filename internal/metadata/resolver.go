package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/reelscout/internal/tmdb"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Finder looks up a single IMDb id.
type Finder interface {
	Find(ctx context.Context, imdbID string) (*tmdb.Movie, error)
}

// Resolver resolves batches of ids concurrently.
type Resolver struct {
	finder      Finder
	concurrency int
	log         *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithConcurrency bounds the number of lookups in flight per batch.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver creates a Resolver backed by finder.
func NewResolver(finder Finder, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		finder:      finder,
		concurrency: defaultConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up every id and returns the ones that matched.
// Ids TMDB has no movie for are absent from the result. Any other failure
// fails the whole batch with ErrResolveFailed.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (Movies, error) {
	start := time.Now()
	result := make(Movies, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			movie, err := r.finder.Find(ctx, id)
			if errors.Is(err, tmdb.ErrNotFound) {
				r.log.Debug("no metadata match", "imdb_id", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrResolveFailed, id, err)
			}

			mu.Lock()
			result[id] = Movie{
				IMDbID:     id,
				Title:      movie.Title,
				Year:       movie.Year(),
				PosterPath: movie.PosterPath,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Warn("metadata batch failed", "ids", len(ids), "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	r.log.Debug("metadata batch resolved", "ids", len(ids), "resolved", len(result), "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
