package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/session"
)

// helpHeight is the number of rows reserved below the board for the help bar.
const helpHeight = 1

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// GameModel is the Bubble Tea model for playing one session.
// All game state lives in the manager; the model only holds the view.
type GameModel struct {
	manager  *session.Manager
	id       session.ID
	screen   *core.Screen
	keys     GameKeyMap
	help     help.Model
	status   string // Last rejected action or error, shown in the help bar
	clock    func() time.Time
	quitting bool
}

// NewGameModel creates a model for the given session. The session is
// created by the manager on first use.
func NewGameModel(manager *session.Manager, id session.ID, width, height int) GameModel {
	return GameModel{
		manager: manager,
		id:      id,
		screen:  core.NewScreen(width, max(height-helpHeight, 1)),
		keys:    DefaultGameKeyMap(),
		help:    help.New(),
		clock:   time.Now,
	}
}

// Init ensures the session exists and starts the poll loop.
func (m GameModel) Init() tea.Cmd {
	if _, err := m.manager.Snapshot(m.id, m.clock()); err != nil {
		return tea.Quit
	}
	return tickCmd(frameRate)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, max(msg.Height-helpHeight, 1))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		// Polling the snapshot applies gravity in poll mode.
		if _, err := m.manager.Poll(m.id, time.Time(msg)); err != nil {
			m.status = err.Error()
		}
		return m, tickCmd(frameRate)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Screenshot):
		if path, err := m.saveScreenshot(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "saved " + path
		}
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		m.status = ""
		if err := m.manager.Restart(m.id, m.clock()); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}

	action := m.keys.Action(msg)
	if action == core.ActionNone {
		return m, nil
	}

	m.status = ""
	if _, err := m.manager.Apply(m.id, action, m.clock()); err != nil {
		if errors.Is(err, session.ErrNotPlayable) {
			m.status = "game over: press enter to play again"
		} else {
			m.status = err.Error()
		}
	}
	return m, nil
}

// saveScreenshot writes the current frame as plain text.
func (m GameModel) saveScreenshot() (string, error) {
	if err := m.manager.Render(m.id, m.screen); err != nil {
		return "", err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".blockfall", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	timestamp := m.clock().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("blockfall_%s.txt", timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// View renders the board followed by the help bar.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if err := m.manager.Render(m.id, m.screen); err != nil {
		m.screen.Clear()
		m.screen.DrawTextCentered(m.screen.Height()/2, "Session closed")
	}
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	}
	return b.String()
}

// Run starts a Bubble Tea program for the session and blocks until it exits.
func Run(manager *session.Manager, id session.ID, width, height int) error {
	model := NewGameModel(manager, id, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
