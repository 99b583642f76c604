// ABOUTME: Bubble Tea message types and commands used in the TUI message loop.
// ABOUTME: Bridges workspace change notifications and persist failures from other goroutines into tea.Msg values.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/plaintext/workspace"
)

// ReadyMsg signals that the workspace finished loading and seeding.
type ReadyMsg struct {
	Err error
}

// ChangedMsg signals that the collection or the selection changed.
type ChangedMsg struct{}

// FlushResultMsg carries the outcome of an explicit flush.
type FlushResultMsg struct {
	Err error
}

// Failure is a storage failure reported by the workspace.
type Failure struct {
	Key string
	Err error
}

// FailureMsg wraps a Failure for the message loop.
type FailureMsg struct {
	Failure
}

// ReadyCmd waits for the workspace bootstrap to finish.
func ReadyCmd(ctx context.Context, ws *workspace.Manager) tea.Cmd {
	return func() tea.Msg {
		return ReadyMsg{Err: ws.Ready(ctx)}
	}
}

// WaitForChangeCmd blocks until the next change notification.
func WaitForChangeCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

// WaitForFailureCmd blocks until the next reported failure. A nil channel
// yields no command.
func WaitForFailureCmd(ch <-chan Failure) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return FailureMsg{Failure: f}
	}
}

// FlushCmd persists everything written so far.
func FlushCmd(ctx context.Context, ws *workspace.Manager) tea.Cmd {
	return func() tea.Msg {
		return FlushResultMsg{Err: ws.Flush(ctx)}
	}
}
