// ABOUTME: Top-level Bubble Tea AppModel that composes the file list, editor, and status bar over a workspace.
// ABOUTME: Implements tea.Model (Init, Update, View); selection and writes go through the workspace Manager.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/plaintext/editors"
	"github.com/2389-research/plaintext/workspace"
)

// FocusTarget indicates which panel currently has keyboard focus.
type FocusTarget int

const (
	FocusList FocusTarget = iota
	FocusEditor
)

// AppOption configures an AppModel.
type AppOption func(*AppModel)

// WithFailures shows failures sent on ch in the status bar.
func WithFailures(ch <-chan Failure) AppOption {
	return func(m *AppModel) {
		m.failures = ch
	}
}

// WithBackend names the storage backend in the status bar.
func WithBackend(name string) AppOption {
	return func(m *AppModel) {
		m.statusBar = NewStatusBarModel(name)
	}
}

// WithGlamourStyle sets the glamour style for markdown previews.
func WithGlamourStyle(style string) AppOption {
	return func(m *AppModel) {
		m.registry = NewEditorRegistry(style)
	}
}

// AppModel is the top-level Bubble Tea model.
type AppModel struct {
	list      ListPanelModel
	editor    EditorPanelModel
	statusBar StatusBarModel

	ws       *workspace.Manager
	registry *editors.Registry[EditorPanelModel]
	ctx      context.Context

	changes     chan struct{}
	unsubscribe func()
	failures    <-chan Failure

	focus  FocusTarget
	ready  bool
	width  int
	height int
}

// NewAppModel creates an AppModel over ws. It subscribes to ws immediately;
// call Close when the program exits.
func NewAppModel(ctx context.Context, ws *workspace.Manager, opts ...AppOption) AppModel {
	changes := make(chan struct{}, 1)
	unsubscribe := ws.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := AppModel{
		list:        NewListPanelModel(),
		editor:      NewEmptyEditorPanel(),
		statusBar:   NewStatusBarModel("memory"),
		ws:          ws,
		registry:    NewEditorRegistry("dark"),
		ctx:         ctx,
		changes:     changes,
		unsubscribe: unsubscribe,
		focus:       FocusList,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.list.SetFocused(true)
	return m
}

// Close stops listening for workspace changes.
func (m AppModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		ReadyCmd(m.ctx, m.ws),
		WaitForChangeCmd(m.changes),
		WaitForFailureCmd(m.failures),
	)
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case ReadyMsg:
		return m.handleReady(msg)

	case ChangedMsg:
		m.refresh()
		return m, WaitForChangeCmd(m.changes)

	case FailureMsg:
		m.statusBar.SetError(fmt.Errorf("%s: %w", msg.Key, msg.Err))
		return m, WaitForFailureCmd(m.failures)

	case FlushResultMsg:
		if msg.Err != nil {
			m.statusBar.SetError(msg.Err)
		} else {
			m.statusBar.SetError(nil)
			m.statusBar.SetMessage("saved")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.width < 40 || m.height < 10 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x10.", m.width, m.height)
	}
	if !m.ready {
		return "Loading workspace..."
	}

	statusBarHeight := 1
	bodyHeight := m.height - statusBarHeight
	listWidth := m.width * 35 / 100
	if listWidth < 20 {
		listWidth = 20
	}
	editorWidth := m.width - listWidth

	m.list.SetSize(listWidth, bodyHeight)
	m.editor.SetSize(editorWidth, bodyHeight)
	m.statusBar.SetWidth(m.width)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.editor.View())

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m AppModel) handleReady(msg ReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusBar.SetError(msg.Err)
		return m, nil
	}
	m.ready = true
	m.refresh()
	return m, nil
}

// refresh pulls the collection, selection, and statuses from the workspace.
// The editor is only rebuilt when the active document changes, so typing does
// not reset the cursor.
func (m *AppModel) refresh() {
	docs := m.ws.List()
	active := m.ws.ActiveIndex()
	m.list.SetDocuments(docs, active)

	docsStatus, indexStatus := m.ws.Status()
	m.statusBar.SetStatus(docsStatus, indexStatus)
	m.statusBar.SetCount(len(docs))

	doc, ok := m.ws.Active()
	switch {
	case !ok:
		if m.editor.Name() != "" {
			m.editor = NewEmptyEditorPanel()
			m.setFocus(FocusList)
		}
	case doc.Name != m.editor.Name():
		m.editor = editors.Render[EditorPanelModel](m.registry.Resolve(doc.MimeType), doc, m.ws.Write)
		m.editor.SetFocused(m.focus == FocusEditor)
	}
	m.statusBar.SetActiveBytes(len(m.editor.Value()))
	if err := m.editor.Err(); err != nil {
		m.statusBar.SetError(err)
	}
}

func (m *AppModel) setFocus(f FocusTarget) {
	if f == FocusEditor && m.editor.Name() == "" {
		f = FocusList
	}
	m.focus = f
	m.list.SetFocused(f == FocusList)
	m.editor.SetFocused(f == FocusEditor)
}

func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		m.statusBar.SetMessage("saving...")
		return m, FlushCmd(m.ctx, m.ws)
	case "tab":
		if m.focus == FocusList {
			m.setFocus(FocusEditor)
		} else {
			m.setFocus(FocusList)
		}
		return m, nil
	case "esc":
		if err := m.ws.Select(workspace.NoSelection); err != nil {
			m.statusBar.SetError(err)
		}
		m.refresh()
		m.setFocus(FocusList)
		return m, nil
	}

	if m.focus == FocusEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if err := m.editor.Err(); err != nil {
			m.statusBar.SetError(err)
		}
		m.statusBar.SetActiveBytes(len(m.editor.Value()))
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.list.MoveUp()
	case "down", "j":
		m.list.MoveDown()
	case "enter":
		if m.list.Len() == 0 {
			return m, nil
		}
		if err := m.ws.Select(m.list.Cursor()); err != nil {
			m.statusBar.SetError(err)
			return m, nil
		}
		m.refresh()
		if m.editor.Editable() {
			m.setFocus(FocusEditor)
		}
	}
	return m, nil
}
