// ABOUTME: HTTP front end for a plaintext workspace: a files table plus the active editor or preview.
// ABOUTME: Serves the chi router with health, metrics, raw text, and YAML export endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389-research/plaintext/document"
	"github.com/2389-research/plaintext/editors"
	"github.com/2389-research/plaintext/export"
	"github.com/2389-research/plaintext/metrics"
	"github.com/2389-research/plaintext/render"
	"github.com/2389-research/plaintext/workspace"
)

// Server serves one workspace over HTTP.
type Server struct {
	ws        *workspace.Manager
	templates *TemplateEngine
	registry  *editors.Registry[template.HTML]
	markdown  *render.Cache
	metrics   *metrics.Recorder
	gatherer  prometheus.Gatherer
	router    chi.Router
	addr      string
	backend   string
	now       func() time.Time
}

// ServerConfig holds the configuration for the web server.
type ServerConfig struct {
	Addr      string // listen address (default: "127.0.0.1:7780")
	Workspace *workspace.Manager
	Backend   string // storage backend name shown in the header

	// Metrics and Gatherer are optional. /metrics is only mounted when
	// Gatherer is set.
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer

	CacheTTL time.Duration // markdown preview cache lifetime (default: 10m)
}

// NewServer creates a Server over cfg.Workspace.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Workspace == nil {
		return nil, errors.New("web: workspace is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7780"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	templates, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		ws:        cfg.Workspace,
		templates: templates,
		markdown:  render.NewCache(render.MarkdownFunc, cfg.CacheTTL),
		metrics:   cfg.Metrics,
		gatherer:  cfg.Gatherer,
		addr:      cfg.Addr,
		backend:   cfg.Backend,
		now:       time.Now,
	}
	s.registry = s.newRegistry()
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP implements http.Handler by delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("component=web action=listen addr=%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("component=web action=stopped addr=%s", s.addr)
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireReady)
		r.Get("/", s.handleHome)
		r.Get("/export.yaml", s.handleExport)
		r.Post("/select", s.handleSelect)
		r.Post("/files/{name}", s.handleWrite)
		r.Get("/files/{name}/raw", s.handleRaw)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Handle("/static/*", http.FileServer(http.FS(StaticFS)))

	return r
}

// newRegistry maps MIME types to HTML fragments: a textarea for plain text,
// a textarea plus rendered preview for markdown, and <pre> for the rest.
func (s *Server) newRegistry() *editors.Registry[template.HTML] {
	return editors.Defaults(
		editors.Editable[template.HTML]{Name: "plaintext", Render: func(p editors.EditorProps) template.HTML {
			return s.renderEditor(p, false)
		}},
		editors.Editable[template.HTML]{Name: "markdown", Render: func(p editors.EditorProps) template.HTML {
			return s.renderEditor(p, true)
		}},
		editors.Preview[template.HTML]{Name: "preview", Render: s.renderPreview},
	)
}

type editorView struct {
	Name     string
	Action   string
	Content  string
	Markdown bool
	Preview  template.HTML
	Err      string
}

func (s *Server) renderEditor(p editors.EditorProps, markdown bool) template.HTML {
	ctx := context.Background()
	view := editorView{
		Name:     p.Document.BaseName(),
		Action:   "/files/" + url.PathEscape(p.Document.Name),
		Markdown: markdown,
	}
	text, err := p.Document.Text(ctx)
	if err != nil {
		view.Err = err.Error()
	}
	view.Content = text
	if markdown && err == nil {
		html, err := s.markdown.Render(ctx, text)
		if err != nil {
			view.Err = err.Error()
		}
		view.Preview = html
	}
	return s.fragment("editor.html", view)
}

type previewView struct {
	Name    string
	Type    string
	RawURL  string
	Content string
	Err     string
}

func (s *Server) renderPreview(p editors.PreviewProps) template.HTML {
	view := previewView{
		Name:   p.Document.BaseName(),
		Type:   p.Document.MimeType,
		RawURL: "/files/" + url.PathEscape(p.Document.Name) + "/raw",
	}
	text, err := p.Document.Text(context.Background())
	if err != nil {
		view.Err = err.Error()
	}
	view.Content = text
	return s.fragment("preview.html", view)
}

func (s *Server) fragment(name string, data any) template.HTML {
	var b strings.Builder
	if err := s.templates.RenderStandaloneTo(&b, name, data); err != nil {
		log.Printf("component=web action=fragment_failed template=%s err=%v", name, err)
		return template.HTML("<p class=\"error\">" + template.HTMLEscapeString(err.Error()) + "</p>")
	}
	return template.HTML(b.String())
}

// handleHome renders the files table and the active document.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	docs := s.ws.List()
	active := s.ws.ActiveIndex()
	docsStatus, indexStatus := s.ws.Status()

	data := PageData{
		Title:   "Files",
		Backend: s.backend,
		Files:   s.fileRows(docs, active),
		Status: StatusView{
			Documents: docsStatus.String(),
			Selection: indexStatus.String(),
		},
	}
	if doc, ok := s.ws.Active(); ok {
		data.Active = &ActiveView{
			Name:     doc.BaseName(),
			Type:     doc.MimeType,
			Editable: s.registry.IsEditable(doc.MimeType),
			Body:     editors.Render[template.HTML](s.registry.Resolve(doc.MimeType), doc, s.ws.Write),
		}
	}

	if err := s.templates.Render(w, "home.html", data); err != nil {
		log.Printf("component=web action=render_failed template=home.html err=%v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (s *Server) fileRows(docs []document.Document, active int) []FileRow {
	now := s.now()
	rows := make([]FileRow, 0, len(docs))
	for i, d := range docs {
		rows = append(rows, FileRow{
			Index:    i,
			Name:     d.BaseName(),
			Type:     d.MimeType,
			Modified: d.LastModified.Format(longDate),
			Relative: relTime(d.LastModified, now),
			Active:   i == active,
			Editable: s.registry.IsEditable(d.MimeType),
		})
	}
	return rows
}

// handleSelect sets the active index from the "index" form field. Anything
// that is not a valid index clears the selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	i, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		i = workspace.NoSelection
	}
	if err := s.ws.Select(i); err != nil {
		if !errors.Is(err, workspace.ErrInvalidSelection) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("component=web action=select_cleared index=%d err=%v", i, err)
		_ = s.ws.Select(workspace.NoSelection)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleWrite stores the "content" form field under the named document,
// creating it when absent. Documents without an editor are read-only.
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	mimeType := document.TypeByExtension(name)
	if existing, ok := s.ws.Get(name); ok {
		mimeType = existing.MimeType
	}
	if !s.registry.IsEditable(mimeType) {
		http.Error(w, fmt.Sprintf("%s (%s) is read-only", name, mimeType), http.StatusForbidden)
		return
	}

	// Browsers submit textarea line breaks as CRLF.
	content := strings.ReplaceAll(r.PostFormValue("content"), "\r\n", "\n")
	if err := s.ws.Write(document.NewText(name, mimeType, content)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRaw returns a document's text with its own MIME type.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ws.Get(fileName(r))
	if !ok {
		http.NotFound(w, r)
		return
	}
	text, err := doc.Text(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = io.WriteString(w, text)
}

// handleExport downloads the workspace as a YAML manifest.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	out, err := export.YAML(r.Context(), s.ws.List())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="plaintext.yaml"`)
	_, _ = w.Write(out)
}

// requireReady answers 503 until the workspace has loaded, so a page never
// shows, and a form never edits, a collection that storage has not returned.
func (s *Server) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ws.Bootstrapped() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "workspace is still loading", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns a JSON health check response with the load statuses.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	docsStatus, indexStatus := s.ws.Status()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"documents": docsStatus.String(),
		"selection": indexStatus.String(),
		"count":     len(s.ws.List()),
	})
}

// fileName returns the unescaped {name} URL parameter.
func fileName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
