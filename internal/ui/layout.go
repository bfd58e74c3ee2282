package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/camphub/internal/theme"
)

// Layout manages the terminal frame dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title bar: title on the left, then the bell,
// then the sync status flush right.
func (l Layout) RenderHeader(title, bell, syncStatus string) string {
	left := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.HeaderStyle.Render(title),
		bell,
	)
	right := theme.HeaderStyle.Render(syncStatus)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, l.fill(left, right, theme.HeaderStyle), right)
}

// RenderStatusBar renders the bottom bar with hints or a toast.
func (l Layout) RenderStatusBar(text string, style lipgloss.Style) string {
	rendered := style.Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, l.fill(rendered, "", style))
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().Height(l.ContentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (l Layout) fill(left, right string, style lipgloss.Style) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
}
