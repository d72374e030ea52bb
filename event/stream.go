package event

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler consumes one published value.
type Handler[T any] func(T)

// PanicHandler is called with the value recovered from a panicking
// handler.
type PanicHandler func(recovered any)

// Stats is a point-in-time snapshot of stream counters.
type Stats struct {
	// Published counts Publish calls.
	Published uint64

	// Delivered counts handler invocations that returned normally.
	Delivered uint64

	// Panics counts handler invocations that panicked.
	Panics uint64

	// Active counts subscriptions that still receive values.
	Active int
}

// Subscription identifies one registered handler. Cancel is safe from
// any goroutine, including from inside a handler during delivery.
type Subscription struct {
	id     string
	once   bool
	active atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// IsActive reports whether the handler still receives values.
func (s *Subscription) IsActive() bool { return s.active.Load() }

// Cancel permanently stops delivery to this subscription.
func (s *Subscription) Cancel() { s.active.Store(false) }

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	once bool
}

// Once cancels the subscription after its first successful delivery.
func Once() SubscribeOption {
	return func(c *subscribeConfig) { c.once = true }
}

// StreamOption configures a Stream.
type StreamOption func(*streamConfig)

type streamConfig struct {
	panicHandler PanicHandler
}

// WithPanicHandler installs a callback invoked whenever a handler
// panics. The panic is already recovered when the callback runs.
func WithPanicHandler(h PanicHandler) StreamOption {
	return func(c *streamConfig) { c.panicHandler = h }
}

type entry[T any] struct {
	sub *Subscription
	fn  Handler[T]
}

// Stream fans published values out to subscribers in subscription
// order.
type Stream[T any] struct {
	mu      sync.Mutex
	entries []entry[T]

	panicHandler PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewStream creates an empty stream.
func NewStream[T any](opts ...StreamOption) *Stream[T] {
	var cfg streamConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Stream[T]{panicHandler: cfg.panicHandler}
}

// Subscribe registers fn to receive every subsequently published
// value.
func (s *Stream[T]) Subscribe(fn Handler[T], opts ...SubscribeOption) *Subscription {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &Subscription{id: uuid.NewString(), once: cfg.once}
	sub.active.Store(true)

	s.mu.Lock()
	s.entries = append(s.entries, entry[T]{sub: sub, fn: fn})
	s.mu.Unlock()
	return sub
}

// Publish delivers v to every active subscriber and returns when the
// last handler has run. Subscriptions made by a handler take effect
// from the next Publish.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	s.compactLocked()
	snapshot := make([]entry[T], len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	s.published.Add(1)

	for _, e := range snapshot {
		if !e.sub.IsActive() {
			continue
		}
		if s.deliver(e.fn, v) && e.sub.once {
			e.sub.Cancel()
		}
	}
}

// deliver runs one handler, absorbing panics. The named return stays
// false when fn panics.
func (s *Stream[T]) deliver(fn Handler[T], v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			if s.panicHandler != nil {
				s.panicHandler(r)
			}
		}
	}()
	fn(v)
	s.delivered.Add(1)
	return true
}

// compactLocked drops cancelled subscriptions. The caller holds s.mu.
func (s *Stream[T]) compactLocked() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.sub.IsActive() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = entry[T]{}
	}
	s.entries = kept
}

// Stats returns a snapshot of the stream's counters.
func (s *Stream[T]) Stats() Stats {
	s.mu.Lock()
	active := 0
	for _, e := range s.entries {
		if e.sub.IsActive() {
			active++
		}
	}
	s.mu.Unlock()

	return Stats{
		Published: s.published.Load(),
		Delivered: s.delivered.Load(),
		Panics:    s.panics.Load(),
		Active:    active,
	}
}
