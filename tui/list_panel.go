// ABOUTME: Implements the file list panel showing each document's name, type, and relative modified time.
// ABOUTME: Tracks a cursor independently of the workspace selection so browsing does not change the active file.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/2389-research/plaintext/document"
)

// typeLabels are short labels for the known MIME types.
var typeLabels = map[string]string{
	document.TypePlain:      "txt",
	document.TypeMarkdown:   "md",
	document.TypeJavaScript: "js",
	document.TypeJSON:       "json",
}

// ListPanelModel renders the document collection.
type ListPanelModel struct {
	docs    []document.Document
	cursor  int
	active  int
	focused bool
	now     func() time.Time
	width   int
	height  int
}

// NewListPanelModel creates an empty list panel.
func NewListPanelModel() ListPanelModel {
	return ListPanelModel{active: -1, now: time.Now}
}

// SetDocuments replaces the rows and the active index, keeping the cursor in range.
func (m *ListPanelModel) SetDocuments(docs []document.Document, active int) {
	m.docs = docs
	m.active = active
	if m.cursor >= len(docs) {
		m.cursor = len(docs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Cursor returns the highlighted row.
func (m ListPanelModel) Cursor() int {
	return m.cursor
}

// Len returns the number of rows.
func (m ListPanelModel) Len() int {
	return len(m.docs)
}

// MoveUp moves the cursor up one row.
func (m *ListPanelModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// MoveDown moves the cursor down one row.
func (m *ListPanelModel) MoveDown() {
	if m.cursor < len(m.docs)-1 {
		m.cursor++
	}
}

// SetFocused sets whether this panel receives navigation keys.
func (m *ListPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize sets the available dimensions.
func (m *ListPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the list panel.
func (m ListPanelModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("FILES"))
	b.WriteString("\n")

	if len(m.docs) == 0 {
		b.WriteString(HintStyle.Render("No files"))
	}
	for i, d := range m.docs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.row(i, d))
	}

	style := BorderStyle
	if m.focused {
		style = FocusedBorderStyle
	}
	return style.Width(max(m.width-2, 1)).Height(max(m.height-2, 1)).Render(b.String())
}

func (m ListPanelModel) row(i int, d document.Document) string {
	pointer := "  "
	if i == m.cursor && m.focused {
		pointer = CursorStyle.Render("> ")
	}
	name := d.BaseName()
	if i == m.active {
		name = ActiveStyle.Render(name)
	}
	label, ok := typeLabels[d.MimeType]
	if !ok {
		label = "?"
	}
	modified := humanize.RelTime(d.LastModified, m.now(), "ago", "from now")
	return fmt.Sprintf("%s%s %s %s", pointer, TypeStyle.Render(label), name, ModifiedStyle.Render(modified))
}
