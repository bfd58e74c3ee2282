package notifications

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/theme"
)

// Item wraps a notification so it can be used in a bubbles/list.
type Item struct {
	N model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.N.Title }

// Delegate renders one notification on two lines: a title line with an
// unread marker and a meta line with the type and age.
type Delegate struct {
	// Now is the reference time for relative ages; nil means time.Now.
	Now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.N

	marker := " "
	titleStyle := theme.ReadStyle
	if !n.IsRead {
		marker = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("●")
		titleStyle = theme.UnreadStyle
	}

	cursor := "  "
	if index == m.Index() {
		cursor = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("▸ ")
	}

	width := m.Width() - 4
	title := truncate(n.Title, width)
	if title == "" {
		title = "(untitled)"
	}

	meta := fmt.Sprintf("%s  %s",
		theme.TypeStyle(n.Type).Render(TypeLabel(n.Type)),
		theme.HelpStyle.Render(d.age(n.CreatedAt)),
	)

	fmt.Fprintf(w, "%s%s %s\n%s  %s", cursor, marker, titleStyle.Render(title), "  ", meta)
}

func (d Delegate) age(t time.Time) string {
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	return RelativeTime(t, now)
}

// RelativeTime formats t relative to now, e.g. "3 minutes ago".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) < time.Minute && now.Sub(t) > -time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// TypeLabel turns BOOKING_CREATED into "Booking created".
func TypeLabel(t model.NotificationType) string {
	if t == "" {
		return "Notification"
	}
	s := strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
