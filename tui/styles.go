// ABOUTME: Defines lipgloss styles for the TUI layout panels, list rows, and load status colors.
// ABOUTME: Provides StyleForStatus to map cell load statuses to their display styles.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/plaintext/cell"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	FocusedBorderStyle = BorderStyle.
				BorderForeground(lipgloss.Color("170"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// List rows
	CursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	ActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	TypeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Width(6)
	ModifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Load status colors
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	LoadedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	EmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Placeholder text in empty panels
	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// StyleForStatus returns the style for a cell load status.
func StyleForStatus(status cell.LoadStatus) lipgloss.Style {
	switch status {
	case cell.Pending:
		return PendingStyle
	case cell.Loaded:
		return LoadedStyle
	case cell.Empty:
		return EmptyStyle
	default:
		return PendingStyle
	}
}
