// Package tui provides the Bubble Tea front end for blockfall.
// It drives a session through the session manager, renders the board
// and serves the same UI over SSH via Wish.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameRate is how often the UI polls its session for gravity and redraws.
const frameRate = 30

// TickMsg is sent to trigger a poll of the session.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
