// ABOUTME: Manager owns the document collection and the active selection, each persisted through its own cell.
// ABOUTME: Bootstraps by seeding an empty store and resetting a stale selection; writes upsert by name.
package workspace

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/2389-research/plaintext/cell"
	"github.com/2389-research/plaintext/document"
	"github.com/2389-research/plaintext/kvstore"
	"github.com/2389-research/plaintext/seed"
)

// NoSelection is the active index when no document is selected.
const NoSelection = -1

// Storage keys used unless overridden with WithKeys.
const (
	DefaultDocumentsKey = "plaintext.files"
	DefaultActiveKey    = "plaintext.activeFile"
)

// Recorder receives write counts in addition to cell loads and persists.
// metrics.Recorder implements it.
type Recorder interface {
	cell.Recorder
	ObserveWrite()
}

type options struct {
	documentsKey string
	activeKey    string
	seeder       seed.Seeder
	now          func() time.Time
	onFailure    func(key string, err error)
	recorder     Recorder
}

// Option configures a Manager.
type Option func(*options)

// WithKeys overrides the storage keys for the collection and the selection.
func WithKeys(documents, active string) Option {
	return func(o *options) {
		o.documentsKey = documents
		o.activeKey = active
	}
}

// WithSeeder replaces the default content used when storage is empty.
func WithSeeder(s seed.Seeder) Option {
	return func(o *options) {
		o.seeder = s
	}
}

// WithClock sets the source of LastModified timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithFailureHandler receives load, decode, and persist failures for both keys.
func WithFailureHandler(fn func(key string, err error)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// WithMetrics reports writes, loads, and persists to r.
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// Manager is the single owner of the document collection. All methods are
// safe for concurrent use; reads and writes touch memory only.
type Manager struct {
	docs   *cell.Cell[[]document.Document]
	active *cell.Cell[int]
	opts   options

	ready chan struct{}

	mu      sync.Mutex
	subs    map[int]func()
	nextSub int
	cancels []func()
}

// New creates a Manager over store and starts loading both keys. Call Ready
// to wait for bootstrap to finish.
func New(ctx context.Context, store kvstore.Store, opts ...Option) *Manager {
	o := options{
		documentsKey: DefaultDocumentsKey,
		activeKey:    DefaultActiveKey,
		seeder:       seed.Default,
		now:          time.Now,
		onFailure:    logFailure,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		opts:  o,
		ready: make(chan struct{}),
		subs:  make(map[int]func()),
	}

	docsCodec := document.CollectionCodec{
		OnMalformed: func(err error) { o.onFailure(o.documentsKey, err) },
	}
	m.docs = cell.New[[]document.Document](ctx, store, o.documentsKey, nil, docsCodec, m.cellOptions(o.documentsKey)...)
	m.active = cell.New[int](ctx, store, o.activeKey, NoSelection, cell.JSONCodec[int]{}, m.cellOptions(o.activeKey)...)

	m.cancels = append(m.cancels,
		m.docs.Subscribe(func([]document.Document) { m.notify() }),
		m.active.Subscribe(func(int) { m.notify() }),
	)

	go m.bootstrap()
	return m
}

func (m *Manager) cellOptions(key string) []cell.Option {
	opts := []cell.Option{
		cell.WithFailureHandler(func(err error) { m.opts.onFailure(key, err) }),
	}
	if m.opts.recorder != nil {
		opts = append(opts, cell.WithMetrics(m.opts.recorder))
	}
	return opts
}

func (m *Manager) bootstrap() {
	defer close(m.ready)
	<-m.docs.Loaded()
	<-m.active.Loaded()

	if m.docs.Status() == cell.Empty || len(m.docs.Get()) == 0 {
		var seeded []document.Document
		if m.opts.seeder != nil {
			seeded = m.opts.seeder()
		}
		for _, d := range seeded {
			if err := m.Write(d); err != nil {
				m.opts.onFailure(m.opts.documentsKey, err)
			}
		}
		log.Printf("component=workspace action=seeded count=%d", len(seeded))
		if m.active.Get() != NoSelection {
			m.active.Set(NoSelection)
		}
	}

	idx := m.active.Get()
	if n := len(m.docs.Get()); idx != NoSelection && (idx < 0 || idx >= n) {
		log.Printf("component=workspace action=reset_selection index=%d len=%d", idx, n)
		m.active.Set(NoSelection)
	}
	m.notify()
}

// Ready blocks until both keys have loaded and bootstrap has run.
func (m *Manager) Ready(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bootstrapped reports whether bootstrap has finished, without blocking.
func (m *Manager) Bootstrapped() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

// Status reports the load status of the collection and the selection.
func (m *Manager) Status() (documents, active cell.LoadStatus) {
	return m.docs.Status(), m.active.Status()
}

// List returns a snapshot of the collection in insertion order.
func (m *Manager) List() []document.Document {
	docs := m.docs.Get()
	out := make([]document.Document, len(docs))
	copy(out, docs)
	return out
}

// Get finds a document by name.
func (m *Manager) Get(name string) (document.Document, bool) {
	for _, d := range m.docs.Get() {
		if d.Name == name {
			return d, true
		}
	}
	return document.Document{}, false
}

// ActiveIndex returns the selected index, or NoSelection when nothing is
// selected or the stored index no longer points into the collection.
func (m *Manager) ActiveIndex() int {
	idx := m.active.Get()
	if idx < 0 || idx >= len(m.docs.Get()) {
		return NoSelection
	}
	return idx
}

// Active returns the selected document.
func (m *Manager) Active() (document.Document, bool) {
	idx := m.active.Get()
	docs := m.docs.Get()
	if idx < 0 || idx >= len(docs) {
		return document.Document{}, false
	}
	return docs[idx], true
}

// Select sets the active index. i must be NoSelection or within the collection.
// The bounds check and the store are separate steps; that is sound only while
// the collection never shrinks, so a removal must reset the selection itself.
func (m *Manager) Select(i int) error {
	if n := len(m.docs.Get()); i != NoSelection && (i < 0 || i >= n) {
		return &InvalidSelectionError{Index: i, Len: n}
	}
	m.active.Set(i)
	return nil
}

// Write replaces the document with the same name, or appends it. LastModified
// is always set to now. The collection persists asynchronously, so content read
// and storage errors are not returned here; call Flush to observe them.
// A Write made before the stored collection loads is replayed on top of it.
func (m *Manager) Write(doc document.Document) error {
	if doc.Name == "" {
		return &document.MalformedRecordError{Index: -1, Missing: []string{"name"}}
	}
	if doc.MimeType == "" {
		doc.MimeType = document.TypeByExtension(doc.Name)
	}
	doc.LastModified = m.opts.now()

	m.docs.Update(func(docs []document.Document) []document.Document {
		out := make([]document.Document, len(docs), len(docs)+1)
		copy(out, docs)
		for i := range out {
			if out[i].Name == doc.Name {
				out[i] = doc
				return out
			}
		}
		return append(out, doc)
	})
	if m.opts.recorder != nil {
		m.opts.recorder.ObserveWrite()
	}
	return nil
}

// Subscribe registers fn to run after any change to the collection or the
// selection. fn may call back into the Manager.
func (m *Manager) Subscribe(fn func()) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Flush waits for every change made so far to be persisted.
func (m *Manager) Flush(ctx context.Context) error {
	return errors.Join(m.docs.Flush(ctx), m.active.Flush(ctx))
}

// Close flushes and stops both cells.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()
	for _, c := range cancels {
		c()
	}
	return errors.Join(m.docs.Close(ctx), m.active.Close(ctx))
}

func logFailure(key string, err error) {
	action := "persist_failed"
	var sue *kvstore.StorageUnavailableError
	switch {
	case errors.As(err, &sue) && sue.Op == "get":
		action = "load_failed"
	case errors.Is(err, document.ErrMalformedRecord):
		action = "record_skipped"
	}
	log.Printf("component=workspace action=%s key=%s err=%v", action, key, err)
}
