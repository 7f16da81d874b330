package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	boxWidth     = 48
	boxMinHeight = 7
	buttonLabel  = "Get Quote"
)

var (
	quoteBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(boxWidth).
			Height(boxMinHeight).
			Align(lipgloss.Center, lipgloss.Center)

	authorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("0")).
			Padding(0, 2).
			Bold(true)

	frameStyle = lipgloss.NewStyle().Padding(1, 2)
)

// View draws the quote box above the button and the key help.
func (m Model) View() string {
	var text strings.Builder

	switch {
	case m.state.Failed:
		text.WriteString(failedStyle.Render(m.state.Text))
	default:
		text.WriteString(m.state.Text)

		if m.state.Author != "" {
			text.WriteString("\n\n")
			text.WriteString(authorStyle.Render(m.state.Author))
		}
	}

	box := quoteBoxStyle.Render(text.String())
	button := lipgloss.PlaceHorizontal(lipgloss.Width(box), lipgloss.Center, buttonStyle.Render(buttonLabel))

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		box,
		"",
		button,
		"",
		m.help.View(m.keys),
	))
}
