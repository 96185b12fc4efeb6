package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	StyleSubtitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	StyleHelp      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StyleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StyleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	StyleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleSelected  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	StyleTabActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62")).Padding(0, 1)
	StyleTab       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	StyleModal     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2)
	StyleMarker    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// headerLine places left-aligned text and a right-aligned clock on the same line.
// width is the full terminal width; padding (4) is subtracted for the content area.
func headerLine(left string, width int, t time.Time) string {
	right := t.Format("15:04:05")
	contentWidth := width - 4 // account for outer Padding(1,2)
	leftLen := lipgloss.Width(left)
	rightLen := len(right)
	gap := contentWidth - leftLen - rightLen
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + StyleDim.Render(right)
}
