// ABOUTME: Implements the editor panel: a textarea for editable documents and a read-only viewport otherwise.
// ABOUTME: Panels are built through the editors registry, so MIME dispatch matches the web front end.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/plaintext/document"
	"github.com/2389-research/plaintext/editors"
	"github.com/2389-research/plaintext/render"
)

type paneMode int

const (
	modeEmpty paneMode = iota
	modeEdit
	modePreview
)

// EditorPanelModel shows the active document.
type EditorPanelModel struct {
	mode     paneMode
	doc      document.Document
	write    func(document.Document) error
	markdown bool
	rendered bool // markdown shown through glamour instead of the textarea
	style    string

	textarea textarea.Model
	viewport viewport.Model

	focused bool
	err     error
	width   int
	height  int
}

// NewEditorRegistry registers the textarea editor for plain text and markdown
// and the viewport preview for everything else. style is the glamour style
// used for the markdown preview toggle.
func NewEditorRegistry(style string) *editors.Registry[EditorPanelModel] {
	return editors.Defaults(
		editors.Editable[EditorPanelModel]{Name: "plaintext", Render: func(p editors.EditorProps) EditorPanelModel {
			return newTextEditor(p, false, style)
		}},
		editors.Editable[EditorPanelModel]{Name: "markdown", Render: func(p editors.EditorProps) EditorPanelModel {
			return newTextEditor(p, true, style)
		}},
		editors.Preview[EditorPanelModel]{Name: "preview", Render: newPreview},
	)
}

func newTextEditor(p editors.EditorProps, markdown bool, style string) EditorPanelModel {
	text, err := p.Document.Text(context.Background())
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.SetValue(text)
	return EditorPanelModel{
		mode:     modeEdit,
		doc:      p.Document,
		write:    p.Write,
		markdown: markdown,
		style:    style,
		textarea: ta,
		viewport: viewport.New(80, 10),
		err:      err,
	}
}

func newPreview(p editors.PreviewProps) EditorPanelModel {
	text, err := p.Document.Text(context.Background())
	vp := viewport.New(80, 10)
	vp.SetContent(text)
	return EditorPanelModel{
		mode:     modePreview,
		doc:      p.Document,
		viewport: vp,
		err:      err,
	}
}

// NewEmptyEditorPanel shows the "select a file" hint.
func NewEmptyEditorPanel() EditorPanelModel {
	return EditorPanelModel{mode: modeEmpty}
}

// Name returns the open document's name, or "" when empty.
func (m EditorPanelModel) Name() string {
	if m.mode == modeEmpty {
		return ""
	}
	return m.doc.Name
}

// Editable reports whether keystrokes change the document.
func (m EditorPanelModel) Editable() bool {
	return m.mode == modeEdit
}

// Value returns the text currently shown.
func (m EditorPanelModel) Value() string {
	switch m.mode {
	case modeEdit:
		return m.textarea.Value()
	case modePreview:
		text, _ := m.doc.Text(context.Background())
		return text
	}
	return ""
}

// Err returns the last read or write failure.
func (m EditorPanelModel) Err() error {
	return m.err
}

// SetFocused gives or takes keyboard focus.
func (m *EditorPanelModel) SetFocused(focused bool) {
	m.focused = focused
	if m.mode != modeEdit {
		return
	}
	if focused {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// SetSize sets the available dimensions.
func (m *EditorPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines) and title (1 line)
	innerW := max(w-2, 1)
	innerH := max(h-3, 1)
	m.textarea.SetWidth(innerW)
	m.textarea.SetHeight(innerH)
	m.viewport.Width = innerW
	m.viewport.Height = innerH
	if m.rendered {
		m.renderMarkdown()
	}
}

// Update handles keys while the panel has focus.
func (m EditorPanelModel) Update(msg tea.Msg) (EditorPanelModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeEdit:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+p" && m.markdown {
			m.rendered = !m.rendered
			if m.rendered {
				m.renderMarkdown()
			}
			return m, nil
		}
		if m.rendered {
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		before := m.textarea.Value()
		m.textarea, cmd = m.textarea.Update(msg)
		if after := m.textarea.Value(); after != before {
			m.doc = m.doc.WithText(after)
			if m.write != nil {
				m.err = m.write(m.doc)
			}
		}
	case modePreview:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *EditorPanelModel) renderMarkdown() {
	out, err := render.Terminal(m.textarea.Value(), m.viewport.Width, m.style)
	if err != nil {
		m.err = err
		out = m.textarea.Value()
	}
	m.viewport.SetContent(out)
}

// View renders the editor panel.
func (m EditorPanelModel) View() string {
	var b strings.Builder
	switch m.mode {
	case modeEmpty:
		b.WriteString(TitleStyle.Render("EDITOR"))
		b.WriteString("\n")
		b.WriteString(HintStyle.Render("Select a file to view or edit"))
	case modeEdit:
		title := m.doc.BaseName()
		switch {
		case m.rendered:
			title += " (preview, ctrl+p to edit)"
		case m.markdown:
			title += " (ctrl+p to preview)"
		}
		b.WriteString(TitleStyle.Render(title))
		b.WriteString("\n")
		if m.rendered {
			b.WriteString(m.viewport.View())
		} else {
			b.WriteString(m.textarea.View())
		}
	case modePreview:
		b.WriteString(TitleStyle.Render(m.doc.BaseName() + " (read-only)"))
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
	}

	style := BorderStyle
	if m.focused {
		style = FocusedBorderStyle
	}
	return style.Width(max(m.width-2, 1)).Height(max(m.height-2, 1)).Render(b.String())
}
