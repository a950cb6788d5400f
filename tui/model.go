// Package tui plays a session in the terminal with bubbletea.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/rules"
)

const DefaultInterval = 150 * time.Millisecond

// StepHook sees every tick the model plays, e.g. to record or publish it.
type StepHook func(out rules.Outcome, snap *game.Snapshot)

type TickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	session  *rules.Session
	tracker  *Tracker
	interval time.Duration
	hook     StepHook
	styles   Styles

	paused bool
	last   rules.Outcome
	snap   *game.Snapshot
	log    []string
}

// New wraps a session. tracker may be nil; pass the one the session was
// created with to show segment counts.
func New(session *rules.Session, tracker *Tracker, interval time.Duration, hook StepHook) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		session:  session,
		tracker:  tracker,
		interval: interval,
		hook:     hook,
		styles:   DefaultStyles(),
		snap:     session.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space", "p":
			m.paused = !m.paused
			return m, nil
		}
		if d, ok := game.ParseDirection(msg.String()); ok {
			m.session.RequestDirection(d)
		}
	case TickMsg:
		if !m.paused {
			m = m.step()
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m Model) step() Model {
	out := m.session.Step()
	m.last = out
	m.snap = m.session.Snapshot()
	if out.Died {
		line := fmt.Sprintf("turn %d: died (%s) at length %d", out.Turn, out.Cause, out.Tick.Length)
		m.log = append([]string{line}, m.log...)
		if len(m.log) > 5 {
			m.log = m.log[:5]
		}
	}
	if m.hook != nil {
		m.hook(out, m.snap)
	}
	return m
}

func (m Model) View() string {
	s := m.snap
	status := fmt.Sprintf("turn %d  round %d  length %d  eaten %d  deaths %d  heading %s",
		s.Turn, s.Round, len(s.Body), s.Eaten, s.Deaths, s.Direction)
	if m.tracker != nil {
		added, removed := m.tracker.Counts()
		status += fmt.Sprintf("  segments %d (+%d/-%d)", m.tracker.Live(), added, removed)
	}
	if m.paused {
		status += "  [paused]"
	}

	parts := []string{RenderBoard(s, m.styles), m.styles.Status.Render(status)}
	for _, line := range m.log {
		parts = append(parts, m.styles.Dead.Render(line))
	}
	parts = append(parts, "arrows/wasd/hjkl steer, space pauses, q quits")
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Snapshot is the board as of the last tick.
func (m Model) Snapshot() *game.Snapshot { return m.snap }
func (m Model) Paused() bool             { return m.paused }
