// ABOUTME: Terminal markdown rendering using glamour for the TUI preview.
// ABOUTME: Word-wraps to the pane width and trims the trailing blank lines glamour emits.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown as styled terminal text. style is a glamour
// standard style name such as "dark", "light", or "notty".
func Terminal(src string, width int, style string) (string, error) {
	if width < 0 {
		width = 0
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(src)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n "), nil
}
