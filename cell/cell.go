// ABOUTME: Cell is a persistence-backed value holder: loads once from a key-value store, persists every change.
// ABOUTME: Persists run on one worker per cell, so at most one write is in flight and pending values collapse to the latest.
package cell

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/2389-research/plaintext/kvstore"
)

// ErrClosed is returned by Flush when the cell stopped before persisting.
var ErrClosed = errors.New("cell closed")

// LoadStatus reports how the initial load from storage resolved.
type LoadStatus int

const (
	// Pending means the initial load has not resolved; Get returns the default.
	Pending LoadStatus = iota
	// Loaded means the cell holds a value from storage or from a Set.
	Loaded
	// Empty means storage had nothing usable for the key; Get returns the default.
	Empty
)

func (s LoadStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Recorder observes loads and persist attempts. metrics.Recorder implements it.
type Recorder interface {
	ObserveLoad(key string, status LoadStatus)
	ObservePersist(key string, err error)
}

type options struct {
	onFailure func(error)
	recorder  Recorder
}

// Option configures a Cell.
type Option func(*options)

// WithFailureHandler receives load, decode, encode, and persist failures.
// The default handler logs them.
func WithFailureHandler(fn func(error)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// WithMetrics reports loads and persists to r.
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// Cell holds one value of type V stored under one key.
type Cell[V any] struct {
	key   string
	store kvstore.Store
	codec Codec[V]
	opts  options

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	value        V
	status       LoadStatus
	early        []func(V) V // updates made before the load resolved, replayed over it
	observers    map[int]func(V)
	nextObserver int

	loaded chan struct{}

	// seq counts Sets; attempted is the seq covered by the last finished persist.
	seq       uint64
	attempted uint64
	pending   bool
	lastErr   error
	progress  chan struct{} // closed and replaced after every persist attempt
	closed    bool

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a cell holding def and starts its single load and its persist
// worker. The cell's storage operations run under ctx until Close.
func New[V any](ctx context.Context, store kvstore.Store, key string, def V, codec Codec[V], opts ...Option) *Cell[V] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.onFailure == nil {
		o.onFailure = func(err error) {
			log.Printf("component=cell action=failure key=%s err=%v", key, err)
		}
	}

	cctx, cancel := context.WithCancel(ctx)
	c := &Cell[V]{
		key:       key,
		store:     store,
		codec:     codec,
		opts:      o,
		ctx:       cctx,
		cancel:    cancel,
		value:     def,
		status:    Pending,
		observers: make(map[int]func(V)),
		loaded:    make(chan struct{}),
		progress:  make(chan struct{}),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go c.load()
	go c.run()
	return c
}

// Key is the storage key.
func (c *Cell[V]) Key() string { return c.key }

// Get returns the current value.
func (c *Cell[V]) Get() V {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Status returns the load status.
func (c *Cell[V]) Status() LoadStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Loaded is closed once the initial load has resolved.
func (c *Cell[V]) Loaded() <-chan struct{} {
	return c.loaded
}

// Wait blocks until the initial load resolves and returns the resulting status.
func (c *Cell[V]) Wait(ctx context.Context) (LoadStatus, error) {
	select {
	case <-c.loaded:
		return c.Status(), nil
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}

// Subscribe registers fn to be called with the new value after every change,
// including the one-time replacement by the loaded value.
func (c *Cell[V]) Subscribe(fn func(V)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Set replaces the value immediately and schedules a persist.
func (c *Cell[V]) Set(v V) {
	c.Update(func(V) V { return v })
}

// Update applies fn to the current value atomically, then behaves like Set.
// fn runs under the cell lock and must not call back into the cell. While the
// load is pending, fn is also kept and replayed over the loaded value, and
// nothing is persisted until the load resolves.
func (c *Cell[V]) Update(fn func(V) V) V {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	if c.status == Pending {
		c.early = append(c.early, fn)
	} else {
		c.status = Loaded
	}
	c.seq++
	c.pending = true
	closed := c.closed
	observers := c.snapshotObservers()
	c.mu.Unlock()

	notify(observers, v)
	if closed {
		log.Printf("component=cell action=set_after_close key=%s", c.key)
		return v
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return v
}

// Flush blocks until every Set issued before the call has been persisted or
// has failed, and returns the error of the most recent attempt.
func (c *Cell[V]) Flush(ctx context.Context) error {
	c.mu.Lock()
	target := c.seq
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.attempted >= target {
			err := c.lastErr
			c.mu.Unlock()
			return err
		}
		ch := c.progress
		c.mu.Unlock()

		select {
		case <-ch:
		case <-c.done:
			c.mu.Lock()
			ok := c.attempted >= target
			err := c.lastErr
			c.mu.Unlock()
			if ok {
				return err
			}
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close flushes outstanding changes, stops the worker, and cancels any
// in-progress load. When ctx ends first, the in-flight storage call is
// cancelled too. Later Sets only change the in-memory value.
func (c *Cell[V]) Close(ctx context.Context) error {
	err := c.Flush(ctx)
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stopOnce.Do(func() { close(c.stop) })
	select {
	case <-c.done:
	case <-ctx.Done():
		c.cancel()
		<-c.done
		if err == nil {
			err = ctx.Err()
		}
	}
	c.cancel()
	return err
}

func (c *Cell[V]) load() {
	raw, ok, err := c.store.Get(c.ctx, c.key)

	var (
		v      V
		status LoadStatus
	)
	switch {
	case err != nil:
		c.opts.onFailure(err)
		status = Empty
	case !ok:
		status = Empty
	default:
		v, err = c.codec.Decode(raw)
		if err != nil {
			c.opts.onFailure(err)
			status = Empty
		} else {
			status = Loaded
		}
	}

	c.mu.Lock()
	var observers []func(V)
	early := c.early
	c.early = nil
	switch {
	case len(early) > 0:
		// Edits made while loading are reapplied on top of what storage held.
		if status == Loaded {
			for _, fn := range early {
				v = fn(v)
			}
			c.value = v
			observers = c.snapshotObservers()
		}
		v = c.value
		c.status = Loaded
		log.Printf("component=cell action=replayed key=%s updates=%d load=%s", c.key, len(early), status)
	case status == Loaded:
		c.value = v
		c.status = Loaded
		observers = c.snapshotObservers()
	default:
		c.status = status
	}
	held := c.pending
	c.mu.Unlock()

	notify(observers, v)
	if c.opts.recorder != nil {
		c.opts.recorder.ObserveLoad(c.key, status)
	}
	close(c.loaded)
	if held {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

func (c *Cell[V]) run() {
	defer close(c.done)
	for {
		select {
		case <-c.wake:
			c.persistPending()
		case <-c.stop:
			c.persistPending()
			return
		}
	}
}

// persistPending writes the latest value if any Set is outstanding. Values set
// while a write is in flight are picked up by the next wake. Nothing is written
// before the load resolves; load wakes the worker again.
func (c *Cell[V]) persistPending() {
	c.mu.Lock()
	if !c.pending || c.status == Pending {
		c.mu.Unlock()
		return
	}
	v := c.value
	seq := c.seq
	c.pending = false
	c.mu.Unlock()

	err := c.persist(v)

	c.mu.Lock()
	c.attempted = seq
	c.lastErr = err
	close(c.progress)
	c.progress = make(chan struct{})
	c.mu.Unlock()

	if err != nil {
		c.opts.onFailure(err)
	}
	if c.opts.recorder != nil {
		c.opts.recorder.ObservePersist(c.key, err)
	}
}

func (c *Cell[V]) persist(v V) error {
	raw, err := c.codec.Encode(c.ctx, v)
	if err != nil {
		return err
	}
	return c.store.Set(c.ctx, c.key, raw)
}

func (c *Cell[V]) snapshotObservers() []func(V) {
	if len(c.observers) == 0 {
		return nil
	}
	out := make([]func(V), 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}

func notify[V any](observers []func(V), v V) {
	for _, fn := range observers {
		fn(v)
	}
}
