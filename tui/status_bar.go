// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing workspace state.
// ABOUTME: Displays load status for both keys, document count, and the last persist error or flush result.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/2389-research/plaintext/cell"
)

// StatusBarModel displays workspace status in a single line.
type StatusBarModel struct {
	backend     string
	docsStatus  cell.LoadStatus
	indexStatus cell.LoadStatus
	count       int
	activeBytes int
	lastErr     error
	message     string
	width       int
}

// NewStatusBarModel creates a StatusBarModel for the named storage backend.
func NewStatusBarModel(backend string) StatusBarModel {
	return StatusBarModel{backend: backend}
}

// SetStatus records the load status of the collection and the selection.
func (m *StatusBarModel) SetStatus(docs, index cell.LoadStatus) {
	m.docsStatus = docs
	m.indexStatus = index
}

// SetCount updates the document count.
func (m *StatusBarModel) SetCount(n int) {
	m.count = n
}

// SetActiveBytes records the size of the open document.
func (m *StatusBarModel) SetActiveBytes(n int) {
	m.activeBytes = n
}

// SetError records the most recent failure. nil clears it.
func (m *StatusBarModel) SetError(err error) {
	m.lastErr = err
	if err != nil {
		m.message = ""
	}
}

// SetMessage shows a transient informational message.
func (m *StatusBarModel) SetMessage(msg string) {
	m.message = msg
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Err returns the last recorded failure.
func (m StatusBarModel) Err() error {
	return m.lastErr
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	content := fmt.Sprintf("Store: %s | files %s | selection %s | %d docs",
		m.backend,
		StyleForStatus(m.docsStatus).Render(m.docsStatus.String()),
		StyleForStatus(m.indexStatus).Render(m.indexStatus.String()),
		m.count)
	if m.activeBytes > 0 {
		content += " | " + humanize.Bytes(uint64(m.activeBytes))
	}
	switch {
	case m.lastErr != nil:
		content += " | " + ErrorStyle.Render(fmt.Sprintf("ERROR: %v", m.lastErr))
	case m.message != "":
		content += " | " + m.message
	}

	style := StatusBarStyle.Width(m.width)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
