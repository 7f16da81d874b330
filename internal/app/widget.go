// Package app contains the application layer: the quote widget and the
// registry of mounted widget instances. It depends on ports only.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-widget/internal/domain"
	"github.com/jsamuelsen/quote-widget/internal/platform/logging"
	"github.com/jsamuelsen/quote-widget/internal/ports"
)

// QuoteWidgetConfig contains the dependencies of a QuoteWidget.
type QuoteWidgetConfig struct {
	// Source fetches quotes. Required.
	Source ports.QuoteSource

	// Metrics records fetch outcomes. Optional.
	Metrics ports.WidgetMetrics

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// QuoteWidget holds the text one widget instance displays and fetches new
// quotes on request.
//
// Fetches are never cancelled by newer ones; whichever response arrives last
// determines the text. Every failure shows domain.FailureMessage.
type QuoteWidget struct {
	source  ports.QuoteSource
	metrics ports.WidgetMetrics
	logger  *slog.Logger
	now     func() time.Time

	// base is cancelled on Close to release in-flight fetches.
	base   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      domain.QuoteState
	closed     bool
	inFlight   int
	lastActive time.Time
	subs       map[uint64]func(domain.QuoteState)
	nextSub    uint64

	// applied counts state updates under mu; notified counts updates whose
	// callbacks have run, under notifyMu.
	applied    uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	notified   uint64
}

// NewQuoteWidget mounts a widget with empty text.
// Panics if Source is nil.
func NewQuoteWidget(cfg QuoteWidgetConfig) *QuoteWidget {
	if cfg.Source == nil {
		panic("QuoteWidget: Source is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	base, cancel := context.WithCancel(context.Background())

	w := &QuoteWidget{
		source:     cfg.Source,
		metrics:    cfg.Metrics,
		logger:     logger.With(slog.String("component", "app.QuoteWidget")),
		now:        now,
		base:       base,
		cancel:     cancel,
		lastActive: now(),
		subs:       make(map[uint64]func(domain.QuoteState)),
	}
	w.notifyCond = sync.NewCond(&w.notifyMu)

	return w
}

// State returns a snapshot of the displayed state.
func (w *QuoteWidget) State() domain.QuoteState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// InFlight returns the number of fetches that have not resolved yet.
func (w *QuoteWidget) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.inFlight
}

// LastActive returns when the widget was mounted or last asked for a quote.
func (w *QuoteWidget) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lastActive
}

// Touch marks the widget active without requesting a quote.
func (w *QuoteWidget) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastActive = w.now()
}

// Closed reports whether the widget has been unmounted.
func (w *QuoteWidget) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closed
}

// RequestQuote starts fetching a new quote and returns at once. The returned
// channel is closed when that fetch has resolved and its result has been
// applied or discarded.
//
// Cancelling ctx does not abandon the fetch; its values (logger, request
// ids) are kept. On a closed widget nothing is dispatched and the returned
// channel is already closed.
func (w *QuoteWidget) RequestQuote(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		close(done)

		logging.FromContext(ctx).DebugContext(ctx, "quote requested on unmounted widget")

		return done
	}

	w.inFlight++
	w.lastActive = w.now()
	w.mu.Unlock()

	go func() {
		defer close(done)

		w.resolve(w.fetch(ctx))
	}()

	return done
}

// Fetch requests a quote and waits for it to resolve or for ctx to end,
// then returns the state at that moment.
func (w *QuoteWidget) Fetch(ctx context.Context) domain.QuoteState {
	select {
	case <-w.RequestQuote(ctx):
	case <-ctx.Done():
	}

	return w.State()
}

// Subscribe registers fn to run after every applied update with the new
// state. Callbacks run one at a time in update order. They may call back into
// the widget but must not wait for one of its fetches to resolve. The
// returned func removes the subscription.
func (w *QuoteWidget) Subscribe(fn func(domain.QuoteState)) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return func() {}
	}

	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn

	var once sync.Once

	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

// Close unmounts the widget. In-flight fetches are cancelled and their
// results discarded; subscribers are dropped. Close is idempotent.
func (w *QuoteWidget) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	w.closed = true
	w.subs = nil
	pending := w.inFlight
	w.mu.Unlock()

	w.cancel()

	w.logger.Debug("widget unmounted", slog.Int("in_flight", pending))
}

// fetchResult is the outcome of one call to the quote source.
type fetchResult struct {
	ctx   context.Context
	quote *domain.Quote
	err   error
}

// fetch calls the source behind a single boundary: every error and panic
// becomes a fetchResult error.
func (w *QuoteWidget) fetch(ctx context.Context) (res fetchResult) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	stop := context.AfterFunc(w.base, cancel)
	defer stop()

	res.ctx = ctx

	defer func() {
		if r := recover(); r != nil {
			res.quote = nil
			res.err = domain.NewInvalidResponseError("quote-source", "panic during fetch", nil)

			logging.FromContext(ctx).ErrorContext(ctx, "quote source panicked", slog.Any("panic", r))
		}
	}()

	quote, err := w.source.GetRandomQuote(ctx)
	if err == nil && (quote == nil || quote.Content == "") {
		err = domain.NewInvalidResponseError("quote-source", "empty quote", nil)
	}

	res.quote = quote
	res.err = err

	return res
}

// resolve applies res unless the widget was closed meanwhile.
func (w *QuoteWidget) resolve(res fetchResult) {
	logger := logging.FromContext(res.ctx)
	at := w.now()

	w.mu.Lock()
	w.inFlight--

	if w.closed {
		w.mu.Unlock()
		w.record(ports.OutcomeDiscarded)

		logger.Debug("discarding response for unmounted widget", slog.Bool("failed", res.err != nil))

		return
	}

	outcome := ports.OutcomeSuccess

	if res.err != nil {
		kind := domain.ClassifyFailure(res.err)
		outcome = string(kind)
		w.state = domain.FailedState(at)

		logger.Warn("quote fetch failed",
			slog.String("failure", outcome),
			slog.Any("error", res.err),
		)
	} else {
		w.state = domain.StateFromQuote(res.quote, at)

		logger.Debug("quote applied", slog.String("quote_id", res.quote.ID))
	}

	state := w.state

	subs := make([]func(domain.QuoteState), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}

	w.applied++
	seq := w.applied
	w.mu.Unlock()

	w.record(outcome)

	// Callbacks for update seq run only after those for seq-1.
	w.notifyMu.Lock()
	for w.notified != seq-1 {
		w.notifyCond.Wait()
	}

	for _, fn := range subs {
		fn(state)
	}

	w.notified = seq
	w.notifyCond.Broadcast()
	w.notifyMu.Unlock()
}

func (w *QuoteWidget) record(outcome string) {
	if w.metrics != nil {
		w.metrics.RecordFetch(outcome)
	}
}
