// ABOUTME: Tests for the AppModel, list panel, editor panel, and status bar.
// ABOUTME: Drives the model with key messages against a real workspace on an in-memory store.
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/plaintext/cell"
	"github.com/2389-research/plaintext/document"
	"github.com/2389-research/plaintext/editors"
	"github.com/2389-research/plaintext/kvstore"
	"github.com/2389-research/plaintext/seed"
	"github.com/2389-research/plaintext/workspace"
)

func testWorkspace(t *testing.T) *workspace.Manager {
	t.Helper()
	ws := workspace.New(context.Background(), kvstore.NewMemoryStore(),
		workspace.WithFailureHandler(func(string, error) {}),
		workspace.WithSeeder(seed.Static(
			document.NewText("notes.txt", document.TypePlain, "hello"),
			document.NewText("README.md", document.TypeMarkdown, "# Title"),
			document.NewText("data.json", document.TypeJSON, `{"a": 1}`),
		)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	return ws
}

// testAppModel returns a sized, ready AppModel with the notty glamour style.
func testAppModel(t *testing.T) (AppModel, *workspace.Manager) {
	t.Helper()
	ws := testWorkspace(t)
	m := NewAppModel(context.Background(), ws, WithBackend("memory"), WithGlamourStyle("notty"))
	t.Cleanup(m.Close)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = update(t, m, ReadyMsg{})
	return m, ws
}

func update(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return am
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestNewAppModel(t *testing.T) {
	m, _ := testAppModel(t)
	if m.focus != FocusList {
		t.Errorf("initial focus = %d, want FocusList", m.focus)
	}
	if m.list.Len() != 3 {
		t.Errorf("list has %d rows, want 3", m.list.Len())
	}
	if m.editor.Name() != "" {
		t.Errorf("editor open on %q before any selection", m.editor.Name())
	}
}

func TestViewBeforeSizeAndReady(t *testing.T) {
	ws := testWorkspace(t)
	m := NewAppModel(context.Background(), ws)
	defer m.Close()

	if got := m.View(); got != "Initializing..." {
		t.Errorf("View = %q", got)
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 5})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Errorf("expected size guard, got %q", m.View())
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.View() != "Loading workspace..." {
		t.Errorf("expected loading view, got %q", m.View())
	}
}

func TestEnterSelectsAndOpensEditor(t *testing.T) {
	m, ws := testAppModel(t)

	m = update(t, m, key(tea.KeyEnter))
	if ws.ActiveIndex() != 0 {
		t.Fatalf("ActiveIndex = %d, want 0", ws.ActiveIndex())
	}
	if m.editor.Name() != "notes.txt" || !m.editor.Editable() {
		t.Fatalf("editor = %q editable=%v", m.editor.Name(), m.editor.Editable())
	}
	if m.focus != FocusEditor {
		t.Errorf("focus = %d, want FocusEditor after opening an editable file", m.focus)
	}

	view := m.View()
	if !strings.Contains(view, "FILES") || !strings.Contains(view, "notes.txt") {
		t.Errorf("view missing list content:\n%s", view)
	}
}

func TestTypingWritesThroughWorkspace(t *testing.T) {
	m, ws := testAppModel(t)
	m = update(t, m, key(tea.KeyEnter))

	m = update(t, m, key(tea.KeyCtrlE))
	m = update(t, m, runes(" world"))

	d, ok := ws.Get("notes.txt")
	if !ok {
		t.Fatal("notes.txt missing")
	}
	text, _ := d.Text(context.Background())
	if text != "hello world" {
		t.Errorf("stored text = %q, want %q", text, "hello world")
	}
	if len(ws.List()) != 3 {
		t.Errorf("write should replace, not append: %d docs", len(ws.List()))
	}
	if m.editor.Value() != "hello world" {
		t.Errorf("editor value = %q", m.editor.Value())
	}
}

func TestNonEditableOpensPreview(t *testing.T) {
	m, ws := testAppModel(t)
	m = update(t, m, key(tea.KeyDown))
	m = update(t, m, key(tea.KeyDown))
	m = update(t, m, key(tea.KeyEnter))

	if ws.ActiveIndex() != 2 {
		t.Fatalf("ActiveIndex = %d, want 2", ws.ActiveIndex())
	}
	if m.editor.Editable() {
		t.Error("json should open read-only")
	}
	if m.focus != FocusList {
		t.Errorf("focus = %d, preview should leave focus on the list", m.focus)
	}

	// Keys routed to the preview must not write.
	m = update(t, m, key(tea.KeyTab))
	m = update(t, m, runes("x"))
	d, _ := ws.Get("data.json")
	if text, _ := d.Text(context.Background()); text != `{"a": 1}` {
		t.Errorf("preview modified the document: %q", text)
	}
	if !strings.Contains(m.View(), "read-only") {
		t.Error("preview title should say read-only")
	}
}

func TestEscClearsSelection(t *testing.T) {
	m, ws := testAppModel(t)
	m = update(t, m, key(tea.KeyEnter))
	m = update(t, m, key(tea.KeyEsc))

	if ws.ActiveIndex() != workspace.NoSelection {
		t.Errorf("ActiveIndex = %d, want NoSelection", ws.ActiveIndex())
	}
	if m.editor.Name() != "" || m.focus != FocusList {
		t.Errorf("editor = %q focus = %d", m.editor.Name(), m.focus)
	}
	if !strings.Contains(m.View(), "Select a file") {
		t.Error("empty editor hint missing")
	}
}

func TestCursorBounds(t *testing.T) {
	m, _ := testAppModel(t)
	m = update(t, m, key(tea.KeyUp))
	if m.list.Cursor() != 0 {
		t.Errorf("cursor = %d after up at top", m.list.Cursor())
	}
	for i := 0; i < 5; i++ {
		m = update(t, m, runes("j"))
	}
	if m.list.Cursor() != 2 {
		t.Errorf("cursor = %d, want clamped to 2", m.list.Cursor())
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := testAppModel(t)
	for _, k := range []tea.KeyMsg{runes("q"), key(tea.KeyCtrlC)} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestQInEditorTypes(t *testing.T) {
	m, ws := testAppModel(t)
	m = update(t, m, key(tea.KeyEnter))
	_, cmd := m.Update(runes("q"))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q in the editor must not quit")
		}
	}
	_ = ws
}

func TestCtrlSFlushes(t *testing.T) {
	m, _ := testAppModel(t)
	next, cmd := m.Update(key(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatal("expected flush command")
	}
	res, ok := cmd().(FlushResultMsg)
	if !ok {
		t.Fatalf("expected FlushResultMsg")
	}
	if res.Err != nil {
		t.Errorf("flush err = %v", res.Err)
	}
	am := update(t, next.(AppModel), res)
	if !strings.Contains(am.statusBar.View(), "saved") {
		t.Errorf("status bar should report save: %s", am.statusBar.View())
	}
}

func TestFailureShownInStatusBar(t *testing.T) {
	m, _ := testAppModel(t)
	m = update(t, m, FailureMsg{Failure{Key: "plaintext.files", Err: errors.New("backend down")}})
	if m.statusBar.Err() == nil || !strings.Contains(m.statusBar.View(), "backend down") {
		t.Errorf("status bar = %s", m.statusBar.View())
	}
}

func TestChangedMsgRefreshesFromOtherWriters(t *testing.T) {
	m, ws := testAppModel(t)
	if err := ws.Write(document.NewText("new.txt", document.TypePlain, "")); err != nil {
		t.Fatal(err)
	}
	m = update(t, m, ChangedMsg{})
	if m.list.Len() != 4 {
		t.Errorf("list has %d rows after external write, want 4", m.list.Len())
	}
}

func TestWaitForChangeCmd(t *testing.T) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	if _, ok := WaitForChangeCmd(ch)().(ChangedMsg); !ok {
		t.Error("expected ChangedMsg")
	}
	close(ch)
	if msg := WaitForChangeCmd(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
	if WaitForFailureCmd(nil) != nil {
		t.Error("nil failure channel should yield no command")
	}
}

func TestMarkdownPreviewToggle(t *testing.T) {
	reg := NewEditorRegistry("notty")
	doc := document.NewText("README.md", document.TypeMarkdown, "# Title\n\nbody")
	p := editors.Render[EditorPanelModel](reg.Resolve(doc.MimeType), doc, func(document.Document) error { return nil })
	p.SetSize(60, 20)
	p.SetFocused(true)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if !p.rendered {
		t.Fatal("ctrl+p should switch to the rendered preview")
	}
	if !strings.Contains(p.View(), "Title") {
		t.Errorf("rendered view missing heading:\n%s", p.View())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if p.rendered {
		t.Error("second ctrl+p should return to editing")
	}
}

func TestStyleForStatus(t *testing.T) {
	tests := []struct {
		status cell.LoadStatus
		want   string
	}{
		{cell.Pending, PendingStyle.Render("x")},
		{cell.Loaded, LoadedStyle.Render("x")},
		{cell.Empty, EmptyStyle.Render("x")},
	}
	for _, tt := range tests {
		if got := StyleForStatus(tt.status).Render("x"); got != tt.want {
			t.Errorf("%s: style mismatch", tt.status)
		}
	}
}

func TestListRowShowsRelativeTime(t *testing.T) {
	l := NewListPanelModel()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.SetSize(60, 10)
	l.SetDocuments([]document.Document{
		{Name: "a.txt", MimeType: document.TypePlain, LastModified: now.Add(-3 * time.Hour)},
	}, -1)
	if !strings.Contains(l.View(), "3 hours ago") {
		t.Errorf("row missing relative time:\n%s", l.View())
	}
}
