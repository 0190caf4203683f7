// Package ui implements the interactive terminal client for CircleShare: a
// login gate, the two feed tabs, a comment panel, and the circle roster.
//
// Pages are bubbletea models composed by App. Pages own only presentation
// state (cursor position, input focus); entity state lives in the feed,
// comments, and circle controllers and pages read copies of it after each
// completed command.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C6FCF")
	colorAccent  = lipgloss.Color("#E8A33D")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#3B3F4A")
	colorError   = lipgloss.Color("#E05252")
	colorLiked   = lipgloss.Color("#E0527F")
)

// Styles holds the lipgloss styles shared by all pages.
type Styles struct {
	Header    lipgloss.Style
	TabActive lipgloss.Style
	TabIdle   lipgloss.Style

	Author   lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Liked    lipgloss.Style

	Error lipgloss.Style
	Help  lipgloss.Style
	Panel lipgloss.Style
}

// DefaultStyles returns the CircleShare styling.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorPrimary).
			Padding(0, 1).
			Bold(true),

		TabActive: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true),

		TabIdle: lipgloss.NewStyle().
			Foreground(colorMuted),

		Author: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),

		Selected: lipgloss.NewStyle().
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(colorPrimary).
			PaddingLeft(1),

		Liked: lipgloss.NewStyle().
			Foreground(colorLiked),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(colorMuted),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
	}
}

func (s Styles) divider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Muted.Render(strings.Repeat("─", width))
}
