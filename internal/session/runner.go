// Package session runs the interactive search prompt.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/vmunix/reelscout/internal/events"
	"github.com/vmunix/reelscout/internal/pipeline"
	"github.com/vmunix/reelscout/internal/watchlist"
	"golang.org/x/sync/errgroup"
)

// errQuit ends the session without reporting an error.
var errQuit = errors.New("quit")

const helpText = `type a title to search
  /add N     toggle result N on the watchlist
  /list      show the watchlist
  /help      show this help
  /quit      leave`

// Runner wires terminal input to the pipeline and renders its state.
type Runner struct {
	pipeline  *pipeline.Pipeline
	watchlist *watchlist.Store
	bus       *events.Bus
	renderer  *Renderer
	in        io.Reader
	logger    *slog.Logger

	outMu    sync.Mutex
	out      io.Writer
	rendered struct {
		gen   uint64
		phase pipeline.Phase
	}
}

// NewRunner creates a new runner. bus must be the one the pipeline
// publishes on.
func NewRunner(p *pipeline.Pipeline, store *watchlist.Store, bus *events.Bus, r *Renderer, in io.Reader, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pipeline:  p,
		watchlist: store,
		bus:       bus,
		renderer:  r,
		in:        in,
		out:       out,
		logger:    logger,
	}
}

// Run reads input and renders results until input ends, /quit is entered or
// the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	updates := r.bus.Subscribe(64,
		events.EventPipelineStateChanged,
		events.EventWatchlistEntryAdded,
		events.EventWatchlistEntryRemoved)
	defer r.bus.Unsubscribe(updates)

	scanCtx, stopScan := context.WithCancel(ctx)
	defer stopScan()
	lines := make(chan string)
	go r.scan(scanCtx, lines)

	r.print(helpText + "\n")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-lines:
				if !ok {
					return r.finish(ctx)
				}
				if err := r.handle(ctx, line); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case e, ok := <-updates:
				if !ok {
					return nil
				}
				r.observe(e)
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// scan forwards input lines until EOF. It runs outside the group because a
// blocked read cannot be interrupted.
func (r *Runner) scan(ctx context.Context, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r.in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		r.logger.Warn("reading input", "error", err)
	}
}

func (r *Runner) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		r.pipeline.SetQuery(line)
		return nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/q":
		return errQuit
	case "/help":
		r.print(helpText + "\n")
	case "/list":
		r.outMu.Lock()
		r.renderer.Watchlist(r.out, r.watchlist.Entries())
		r.outMu.Unlock()
	case "/add", "/toggle":
		r.toggle(ctx, strings.TrimSpace(arg))
	default:
		r.print(fmt.Sprintf("unknown command %s, try /help\n", cmd))
	}
	return nil
}

func (r *Runner) toggle(ctx context.Context, arg string) {
	s := r.pipeline.State()
	results := s.Results()

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(results) {
		r.print(fmt.Sprintf("no result %q (have %d)\n", arg, len(results)))
		return
	}
	res := results[n-1]

	change, err := r.watchlist.Toggle(ctx, res.ID, s)
	switch {
	case errors.Is(err, watchlist.ErrMetadataNotFound):
		r.print(fmt.Sprintf("%s has no metadata yet, not added\n", res.ID))
	case err != nil:
		r.logger.Error("watchlist toggle failed", "imdb_id", res.ID, "error", err)
		r.print(fmt.Sprintf("watchlist not saved: %v\n", err))
	default:
		r.logger.Debug("watchlist toggled", "imdb_id", res.ID, "change", change.String())
	}
}

// observe reacts to a bus event. Watchlist changes are reported from here
// so toggles made elsewhere in the process show up too.
func (r *Runner) observe(e events.Event) {
	switch e := e.(type) {
	case *events.WatchlistEntryAdded:
		r.print(fmt.Sprintf("added: %s (%d on watchlist)\n", displayTitle(e.Title, e.EntityID()), e.Size))
	case *events.WatchlistEntryRemoved:
		r.print(fmt.Sprintf("removed: %s (%d on watchlist)\n", displayTitle(e.Title, e.EntityID()), e.Size))
	default:
		r.render(r.pipeline.State())
	}
}

func displayTitle(title, id string) string {
	if title == "" {
		return id
	}
	return title
}

// finish waits for the last query to settle when input ends, so piped
// input still prints its results.
func (r *Runner) finish(ctx context.Context) error {
	s, err := r.pipeline.WaitSettled(ctx)
	if err != nil {
		return err
	}
	r.render(s)
	return errQuit
}

// render prints s unless that generation and phase were already shown.
func (r *Runner) render(s pipeline.State) {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	if s.Generation == r.rendered.gen && s.Phase == r.rendered.phase {
		return
	}
	r.rendered.gen, r.rendered.phase = s.Generation, s.Phase
	r.renderer.State(r.out, s, r.watchlist.Contains)
}

func (r *Runner) print(msg string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	io.WriteString(r.out, msg)
}
