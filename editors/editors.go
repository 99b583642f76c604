// ABOUTME: Registry maps MIME types to editing capabilities, falling back to a read-only preview.
// ABOUTME: Generic over the render output so the terminal and web front ends share the same dispatch rules.
package editors

import (
	"sort"
	"sync"

	"github.com/2389-research/plaintext/document"
)

// EditorProps is what an editable capability receives.
type EditorProps struct {
	Document document.Document
	Write    func(document.Document) error
}

// PreviewProps is what a preview receives. It has no way to write.
type PreviewProps struct {
	Document document.Document
}

// Capability is either an Editable or a Preview.
type Capability[R any] interface {
	capability()
}

// Editable renders a document together with the means to change it.
type Editable[R any] struct {
	Name   string
	Render func(EditorProps) R
}

// Preview renders a document read-only.
type Preview[R any] struct {
	Name   string
	Render func(PreviewProps) R
}

func (Editable[R]) capability() {}
func (Preview[R]) capability()  {}

// Render dispatches to the capability. write is only handed to editables.
func Render[R any](c Capability[R], doc document.Document, write func(document.Document) error) R {
	switch c := c.(type) {
	case Editable[R]:
		return c.Render(EditorProps{Document: doc, Write: write})
	case Preview[R]:
		return c.Render(PreviewProps{Document: doc})
	}
	var zero R
	return zero
}

// Registry maps exact MIME type strings to editables.
type Registry[R any] struct {
	mu       sync.RWMutex
	editors  map[string]Editable[R]
	fallback Preview[R]
}

// NewRegistry creates an empty registry. Every unregistered type resolves to fallback.
func NewRegistry[R any](fallback Preview[R]) *Registry[R] {
	return &Registry[R]{
		editors:  make(map[string]Editable[R]),
		fallback: fallback,
	}
}

// Defaults registers the editors for plain text and markdown. Everything
// else previews.
func Defaults[R any](plain, markdown Editable[R], fallback Preview[R]) *Registry[R] {
	r := NewRegistry(fallback)
	r.Register(document.TypePlain, plain)
	r.Register(document.TypeMarkdown, markdown)
	return r
}

// Register adds or replaces the editor for mime.
func (r *Registry[R]) Register(mime string, e Editable[R]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editors[mime] = e
}

// Resolve returns the editor registered for mime, or the fallback preview.
// There is no wildcard or prefix matching.
func (r *Registry[R]) Resolve(mime string) Capability[R] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.editors[mime]; ok {
		return e
	}
	return r.fallback
}

// IsEditable reports whether mime has a registered editor.
func (r *Registry[R]) IsEditable(mime string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.editors[mime]
	return ok
}

// Types lists the registered MIME types in sorted order.
func (r *Registry[R]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.editors))
	for k := range r.editors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
