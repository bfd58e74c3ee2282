package notifications

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/camphub/internal/keys"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/theme"
)

// Model is the notification dropdown. It only renders and tracks the
// cursor; actions are carried out by the caller on the selected entry.
type Model struct {
	list       list.Model
	keys       *keys.KeyMap
	all        []model.Notification
	unreadOnly bool
	loading    bool
	width      int
	height     int
}

// New creates an empty dropdown.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := Model{list: l, keys: k, loading: true}
	m.SetSize(width, height)
	return m
}

// SetLoading toggles the loading placeholder.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetItems replaces the entries, keeping the cursor on the same
// notification when it is still present.
func (m *Model) SetItems(list []model.Notification) tea.Cmd {
	m.all = list
	m.loading = false
	return m.refill()
}

// UnreadOnly reports whether read entries are hidden.
func (m Model) UnreadOnly() bool {
	return m.unreadOnly
}

// SetUnreadOnly hides or shows read entries.
func (m *Model) SetUnreadOnly(on bool) tea.Cmd {
	m.unreadOnly = on
	return m.refill()
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.N, true
}

// Len returns the number of visible entries.
func (m Model) Len() int {
	return len(m.list.Items())
}

func (m *Model) refill() tea.Cmd {
	selected, hadSelection := m.Selected()

	items := make([]list.Item, 0, len(m.all))
	cursor := 0
	for _, n := range m.all {
		if m.unreadOnly && n.IsRead {
			continue
		}
		if hadSelection && n.ID == selected.ID {
			cursor = len(items)
		}
		items = append(items, Item{N: n})
	}

	cmd := m.list.SetItems(items)
	m.list.Select(cursor)
	return cmd
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update moves the cursor. Other keys are left to the caller.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Down):
			m.list.CursorDown()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.list.CursorUp()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the framed dropdown.
func (m Model) View() string {
	title := "Notifications"
	if m.unreadOnly {
		title += " (unread)"
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render(title)

	var body string
	switch {
	case m.loading:
		body = m.placeholder("Loading…")
	case len(m.list.Items()) == 0 && m.unreadOnly && len(m.all) > 0:
		body = m.placeholder(NoUnreadText)
	case len(m.list.Items()) == 0:
		body = m.placeholder(EmptyText)
	default:
		body = m.list.View()
	}

	return theme.DropdownStyle.
		Width(m.width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// Placeholder text.
const (
	EmptyText    = "No notifications yet"
	NoUnreadText = "You're all caught up"
)

func (m Model) placeholder(text string) string {
	return lipgloss.NewStyle().
		Width(m.width - 4).
		Height(max(m.height-4, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// SetSize updates the dropdown dimensions, border included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(max(width-4, 10), max(height-3, 2))
}

// Width returns the rendered width, border included.
func (m Model) Width() int {
	return m.width
}
