package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snek3d/game"
)

type Styles struct {
	Empty    lipgloss.Style
	Head     lipgloss.Style
	Body     lipgloss.Style
	Growth   lipgloss.Style
	Candy    lipgloss.Style
	Obstacle lipgloss.Style
	Frame    lipgloss.Style
	Status   lipgloss.Style
	Dead     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Head:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff87")).Bold(true),
		Body:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00af5f")),
		Growth:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd700")),
		Candy:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f87")).Bold(true),
		Obstacle: lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a")),
		Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Dead:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true),
	}
}

// Glyphs per cell kind.
const (
	glyphEmpty    = "·"
	glyphHead     = "@"
	glyphBody     = "o"
	glyphGrowth   = "O"
	glyphCandy    = "*"
	glyphObstacle = "#"
)

// RenderBoard draws the snapshot one character per cell, rows top to
// bottom, framed.
func RenderBoard(snap *game.Snapshot, st Styles) string {
	cells := make([][]string, snap.Height)
	for z := range cells {
		cells[z] = make([]string, snap.Width)
		for x := range cells[z] {
			cells[z][x] = st.Empty.Render(glyphEmpty)
		}
	}
	put := func(p game.Point, s string) {
		if p.Z >= 0 && p.Z < snap.Height && p.X >= 0 && p.X < snap.Width {
			cells[p.Z][p.X] = s
		}
	}
	for _, p := range snap.Candies {
		put(p, st.Candy.Render(glyphCandy))
	}
	for _, p := range snap.Obstacles {
		put(p, st.Obstacle.Render(glyphObstacle))
	}
	for i := len(snap.Body) - 1; i >= 0; i-- {
		switch {
		case i == 0:
			put(snap.Body[i], st.Head.Render(glyphHead))
		case i < len(snap.Growth) && snap.Growth[i]:
			put(snap.Body[i], st.Growth.Render(glyphGrowth))
		default:
			put(snap.Body[i], st.Body.Render(glyphBody))
		}
	}

	rows := make([]string, len(cells))
	for z, row := range cells {
		rows[z] = strings.Join(row, " ")
	}
	return st.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
