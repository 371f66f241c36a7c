// Package pipeline turns debounced search input into resolved movie metadata.
//
// The flow is search → id extraction → metadata lookup. All transitions go
// through Reduce; the Pipeline type runs the fetches Reduce asks for and
// drops results that belong to a query the user has already moved past.
package pipeline

//go:generate mockgen -destination=mocks/mock_pipeline.go -package=mocks . Searcher,Resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmunix/reelscout/internal/catalog"
	"github.com/vmunix/reelscout/internal/debounce"
	"github.com/vmunix/reelscout/internal/events"
	"github.com/vmunix/reelscout/internal/metadata"
)

// Searcher queries the catalog.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.Hit, error)
}

// Resolver resolves a batch of ids to metadata.
type Resolver interface {
	Resolve(ctx context.Context, ids []string) (metadata.Movies, error)
}

// Pipeline owns the fetch state for one search box.
type Pipeline struct {
	searcher Searcher
	resolver Resolver
	bus      *events.Bus
	log      *slog.Logger
	window   time.Duration

	debouncer *debounce.Debouncer[string]

	// mu serializes dispatch; state is only written under it.
	mu      sync.Mutex
	state   State
	changed chan struct{} // closed and replaced on every state change
	closed  bool

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the quiescence window applied to SetQuery.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		p.window = d
	}
}

// WithBus publishes every state change on bus.
func WithBus(bus *events.Bus) Option {
	return func(p *Pipeline) {
		p.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// New creates an idle pipeline.
func New(searcher Searcher, resolver Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher: searcher,
		resolver: resolver,
		log:      slog.Default(),
		window:   debounce.DefaultWindow,
		state: State{
			IDs:      []string{},
			Metadata: metadata.Movies{},
		},
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.debouncer = debounce.New(p.window, func(q string) {
		p.dispatch(QuerySettled{Query: q})
	})
	return p
}

// SetQuery records raw input. The search starts once the input has been
// stable for the debounce window.
func (p *Pipeline) SetQuery(query string) {
	p.dispatch(InputChanged{Query: query})
	p.debouncer.Push(query)
}

// Submit settles query immediately, skipping the debounce window.
func (p *Pipeline) Submit(query string) {
	p.debouncer.Cancel()
	p.dispatch(InputChanged{Query: query})
	p.dispatch(QuerySettled{Query: query})
}

// State returns the current snapshot.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// WaitSettled blocks until the current input has been debounced and its
// fetches have finished, then returns that state.
func (p *Pipeline) WaitSettled(ctx context.Context) (State, error) {
	for {
		p.mu.Lock()
		s, changed := p.state, p.changed
		p.mu.Unlock()

		if s.Settled() {
			return s, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

// Wait blocks until every fetch already started has delivered its result.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Close stops the debouncer, cancels in-flight fetches and waits for them.
// Results arriving after Close are ignored.
func (p *Pipeline) Close() {
	p.debouncer.Stop()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.inflight.Wait()
}

func (p *Pipeline) dispatch(a Action) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	prev := p.state
	if Stale(prev, a) {
		p.mu.Unlock()
		p.log.Debug("discarding stale result", "action", actionName(a), "generation", generationOf(a), "current", prev.Generation)
		return
	}

	next := Reduce(prev, a)
	if !changedState(prev, next, a) {
		p.mu.Unlock()
		return
	}

	p.state = next
	close(p.changed)
	p.changed = make(chan struct{})
	p.startEffects(prev, next)
	p.mu.Unlock()

	p.logTransition(prev, next)
	p.publish(next)
}

// changedState reports whether a produced a new state worth announcing.
func changedState(prev, next State, a Action) bool {
	if _, ok := a.(InputChanged); ok {
		return prev.Query != next.Query
	}
	return prev.Generation != next.Generation || prev.Phase != next.Phase
}

// startEffects launches the fetch the new state asks for. Called with mu
// held so inflight.Add happens before any Wait can observe zero.
func (p *Pipeline) startEffects(prev, next State) {
	switch {
	case next.Phase == PhaseSearching && next.Generation != prev.Generation:
		p.inflight.Add(1)
		go p.search(next.Generation, next.DebouncedQuery)
	case next.Phase == PhaseResolving && prev.Phase != PhaseResolving:
		p.inflight.Add(1)
		go p.resolve(next.Generation, next.IDs)
	}
}

func (p *Pipeline) search(gen uint64, query string) {
	defer p.inflight.Done()

	reqID := uuid.NewString()
	log := p.log.With("request_id", reqID, "generation", gen)
	start := time.Now()

	hits, err := p.searcher.Search(p.ctx, query)
	if err != nil {
		log.Warn("search failed", "query", query, "error", err, "duration_ms", time.Since(start).Milliseconds())
		p.dispatch(SearchFailed{Generation: gen, Err: err})
		return
	}

	ids := catalog.ExtractIDs(hits)
	log.Info("search complete", "query", query, "hits", len(hits), "ids", len(ids), "duration_ms", time.Since(start).Milliseconds())
	p.dispatch(SearchSucceeded{Generation: gen, IDs: ids})
}

func (p *Pipeline) resolve(gen uint64, ids []string) {
	defer p.inflight.Done()

	reqID := uuid.NewString()
	log := p.log.With("request_id", reqID, "generation", gen)
	start := time.Now()

	movies, err := p.resolver.Resolve(p.ctx, ids)
	if err != nil {
		log.Warn("metadata resolution failed", "ids", len(ids), "error", err, "duration_ms", time.Since(start).Milliseconds())
		p.dispatch(MetadataFailed{Generation: gen, Err: err})
		return
	}

	log.Info("metadata resolved", "ids", len(ids), "resolved", len(movies), "duration_ms", time.Since(start).Milliseconds())
	p.dispatch(MetadataResolved{Generation: gen, Metadata: movies})
}

func (p *Pipeline) logTransition(prev, next State) {
	if prev.Phase == next.Phase && prev.Generation == next.Generation {
		return
	}
	p.log.Debug("pipeline transition",
		"from", prev.Phase.String(),
		"to", next.Phase.String(),
		"query", next.DebouncedQuery,
		"generation", next.Generation)
}

func (p *Pipeline) publish(s State) {
	if p.bus == nil {
		return
	}

	e := events.NewPipelineStateChanged(s.DebouncedQuery)
	e.Phase = s.Phase.String()
	e.Generation = s.Generation
	e.IDs = len(s.IDs)
	e.Resolved = len(s.Metadata)
	e.Loading = s.IsLoading()
	if err := s.Err(); err != nil {
		e.Error = err.Error()
	}

	if err := p.bus.Publish(context.Background(), e); err != nil {
		p.log.Warn("publish state change", "error", err)
	}
}

func actionName(a Action) string {
	switch a.(type) {
	case SearchSucceeded:
		return "search_succeeded"
	case SearchFailed:
		return "search_failed"
	case MetadataResolved:
		return "metadata_resolved"
	case MetadataFailed:
		return "metadata_failed"
	case QuerySettled:
		return "query_settled"
	default:
		return "input_changed"
	}
}

func generationOf(a Action) uint64 {
	switch a := a.(type) {
	case SearchSucceeded:
		return a.Generation
	case SearchFailed:
		return a.Generation
	case MetadataResolved:
		return a.Generation
	case MetadataFailed:
		return a.Generation
	}
	return 0
}
