package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/credential"
	"github.com/nhle/camphub/internal/keys"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/notify"
	"github.com/nhle/camphub/internal/route"
	"github.com/nhle/camphub/internal/source"
	"github.com/nhle/camphub/internal/store"
	appsync "github.com/nhle/camphub/internal/sync"
	"github.com/nhle/camphub/internal/theme"
	"github.com/nhle/camphub/internal/ui"
	"github.com/nhle/camphub/internal/ui/command"
	helpview "github.com/nhle/camphub/internal/ui/help"
	"github.com/nhle/camphub/internal/ui/notifications"
	"github.com/nhle/camphub/internal/ui/setup"
)

const appTitle = "CampHub"

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewCommand
	ViewSetup
)

// inboxLoadedMsg is sent after the dropdown list was fetched.
type inboxLoadedMsg struct {
	err error
}

// actionDoneMsg is sent after a dropdown action settles.
type actionDoneMsg struct {
	toast    notify.Toast
	location string
	authErr  bool
}

// cachedMsg carries the offline snapshot read at start-up.
type cachedMsg struct {
	result appsync.PollResultMsg
}

// toastExpiredMsg clears the toast with the matching id.
type toastExpiredMsg struct {
	id int
}

// Options configures the root model.
type Options struct {
	Config     model.AppConfig
	ConfigPath string
	Token      string
	Store      store.Store
	Vault      *credential.Vault
	Logger     *zap.Logger
	NewAPI     NewAPIFunc
}

// Model is the root Bubble Tea model: header bell, dropdown, overlays
// and the status bar.
type Model struct {
	opts    Options
	session *Session

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	bell         *notify.Bell
	dropdown     notifications.Model
	helpView     helpview.Model
	commandView  command.Model
	setupView    setup.Model
	ready        bool

	unreadCount      int
	location         string
	toast            notify.Toast
	toastID          int
	authErrorMessage string
}

// New creates the root model. Without a token it opens on the setup view.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config.API.BaseURL == "" {
		opts.Config.API.BaseURL = model.DefaultBaseURL
	}
	k := keys.DefaultKeyMap()

	m := Model{
		opts:        opts,
		keys:        k,
		layout:      ui.NewLayout(80, 24),
		dropdown:    notifications.New(k, 60, 16),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		location:    route.ProfilePath,
	}
	m.setupView = setup.New(m.setupDeps(), k, opts.Config.API.BaseURL, 80, 24)

	if opts.Token == "" {
		m.currentView = ViewSetup
		m.bell = notify.NewBell(nil)
		return m
	}
	m.connect(opts.Config.API.BaseURL, opts.Token)
	return m
}

// connect replaces the session. The previous poller, if any, is stopped.
func (m *Model) connect(baseURL, token string) {
	m.session.Close()
	m.opts.Config.API.BaseURL = baseURL
	m.opts.Token = token
	m.session = Connect(m.opts.Config, baseURL, token, m.opts.Store, m.opts.Logger, m.opts.NewAPI)
	m.bell = notify.NewBell(m.session.Poller.Refresh)
	m.unreadCount = 0
	m.authErrorMessage = ""
}

// Close stops background work. Call it after the program exits.
func (m Model) Close() {
	m.session.Close()
}

func (m Model) setupDeps() setup.Deps {
	opts := m.opts
	return setup.Deps{
		Validate: func(ctx context.Context, baseURL, token string) (string, error) {
			return Validate(ctx, opts.Config, baseURL, token, opts.NewAPI)
		},
		Save: func(baseURL, token string) error {
			if opts.Vault != nil {
				if err := opts.Vault.SetToken(token); err != nil {
					return err
				}
			}
			if opts.ConfigPath == "" {
				return nil
			}
			cfg := opts.Config
			cfg.API.BaseURL = baseURL
			return model.SaveConfig(opts.ConfigPath, &cfg)
		},
	}
}

// Init shows the cached snapshot and starts polling.
func (m Model) Init() tea.Cmd {
	if m.session == nil {
		return m.setupView.Init()
	}
	return tea.Batch(m.loadCached(), m.session.Poller.Start())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := msg.Width, m.layout.ContentHeight()
		m.dropdown.SetSize(min(w, 64), min(h, 18))
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.setupView.SetSize(w, h)
		m.bell.SetBounds(m.dropdownBounds())
		return m.updateActiveView(msg)

	case cachedMsg:
		if m.session != nil {
			m.unreadCount = m.session.Poller.UnreadCount()
		}
		return m, nil

	case appsync.PollResultMsg:
		m.unreadCount = msg.Unread
		switch {
		case msg.AuthError:
			m.authErrorMessage = notify.MsgSessionExpired
		case msg.Err == nil:
			m.authErrorMessage = ""
		}
		if m.session == nil {
			return m, nil
		}
		return m, m.session.Poller.WaitForNextResult()

	case inboxLoadedMsg:
		cmd := m.dropdown.SetItems(m.session.Inbox.Items())
		m.bell.SetBounds(m.dropdownBounds())
		if msg.err != nil {
			return m, tea.Batch(cmd, m.showToast(notify.Toast{Text: notify.MsgLoadFailed, Error: true}))
		}
		return m, cmd

	case actionDoneMsg:
		cmd := m.dropdown.SetItems(m.session.Inbox.Items())
		m.bell.SetBounds(m.dropdownBounds())
		m.unreadCount = m.session.Inbox.UnreadCount()
		m.session.Poller.Refresh()
		if msg.location != "" {
			m.location = msg.location
			m.bell.Close()
		}
		if msg.authErr {
			m.authErrorMessage = notify.MsgSessionExpired
		}
		return m, tea.Batch(cmd, m.showToast(msg.toast))

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = notify.Toast{}
		}
		return m, nil

	case setup.SavedMsg:
		m.connect(msg.BaseURL, msg.Token)
		m.setupView = setup.New(m.setupDeps(), m.keys, msg.BaseURL, m.layout.Width, m.layout.ContentHeight())
		m.currentView = ViewMain
		m.bell.SetBounds(m.dropdownBounds())
		return m, tea.Batch(
			m.showToast(notify.Toast{Text: "Connected as " + msg.Principal}),
			m.loadCached(),
			m.session.Poller.Start(),
		)

	case setup.DoneMsg:
		if m.session == nil {
			return m, tea.Quit
		}
		m.currentView = ViewMain
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewSetup {
			return m.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Help) && m.currentView != ViewCommand:
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back) && m.currentView != ViewMain:
			m.currentView = ViewMain
			return m, nil
		}

		if m.currentView == ViewMain {
			return m.handleMainKeys(msg)
		}
	}

	return m.updateActiveView(msg)
}

// handleMainKeys processes keys on the main screen.
func (m Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Setup):
		m.previousView = m.currentView
		m.currentView = ViewSetup
		return m, m.setupView.Init()

	case key.Matches(msg, m.keys.Bell):
		return m, m.toggleBell()

	case key.Matches(msg, m.keys.Refresh):
		if m.session == nil {
			return m, nil
		}
		m.session.Poller.Refresh()
		if m.bell.IsOpen() {
			return m, m.loadInbox()
		}
		return m, nil
	}

	if !m.bell.IsOpen() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.bell.Close()
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if n, ok := m.dropdown.Selected(); ok {
			return m, m.openNotification(n)
		}
		return m, nil

	case key.Matches(msg, m.keys.Read):
		if n, ok := m.dropdown.Selected(); ok {
			return m, m.markRead(n.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ReadAll):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.dropdown.Selected(); ok {
			return m, m.deleteNotification(n.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.dropdown, cmd = m.dropdown.Update(msg)
	return m, cmd
}

// handleMouse toggles the bell when it is clicked and closes the dropdown
// on presses outside it.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.currentView != ViewMain || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.bellBounds().Contains(msg.X, msg.Y) {
		return m, m.toggleBell()
	}
	m.bell.HandlePress(msg.X, msg.Y)
	return m, nil
}

func (m *Model) toggleBell() tea.Cmd {
	if m.session == nil {
		return nil
	}
	if !m.bell.Toggle() {
		return nil
	}
	m.bell.SetBounds(m.dropdownBounds())
	m.dropdown.SetLoading(true)
	return m.loadInbox()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMain:
		if m.bell.IsOpen() {
			m.dropdown, cmd = m.dropdown.Update(msg)
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(appTitle, m.bellView(), m.syncStatus())
	content := m.renderContent()

	text, style := m.statusText()
	statusBar := m.layout.RenderStatusBar(text, style)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSetup:
		return m.setupView.View()
	}

	if !m.bell.IsOpen() {
		return m.homeView(m.layout.Width)
	}
	dropdown := m.dropdown.View()
	left := m.homeView(m.layout.Width - lipgloss.Width(dropdown))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, dropdown)
}

func (m Model) homeView(width int) string {
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
	var who string
	if m.session != nil {
		who = m.session.Principal
		if who == "" {
			who = "unknown"
		}
		if m.session.IsAdmin {
			who += " (admin)"
		}
	}

	lines := []string{
		label.Render("Signed in") + who,
		label.Render("Location") + m.location,
		label.Render("Unread") + fmt.Sprint(m.unreadCount),
		"",
		theme.HelpStyle.Render("Press b to open notifications."),
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(max(width, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// bellView renders the bell with its unread badge.
func (m Model) bellView() string {
	bell := theme.HeaderStyle.Render("🔔")
	if m.unreadCount <= 0 {
		return bell
	}
	count := fmt.Sprint(m.unreadCount)
	if m.unreadCount > 99 {
		count = "99+"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bell, theme.BadgeStyle.Render(count))
}

// bellBounds is where the bell is drawn in the header.
func (m Model) bellBounds() notify.Rect {
	return notify.Rect{
		X: lipgloss.Width(theme.HeaderStyle.Render(appTitle)),
		Y: 0,
		W: lipgloss.Width(m.bellView()),
		H: m.layout.HeaderHeight,
	}
}

// dropdownBounds is where the dropdown is drawn: flush right below the
// header.
func (m Model) dropdownBounds() notify.Rect {
	view := m.dropdown.View()
	w := lipgloss.Width(view)
	return notify.Rect{
		X: m.layout.Width - w,
		Y: m.layout.HeaderHeight,
		W: w,
		H: lipgloss.Height(view),
	}
}

// syncStatus returns a short string describing the poller state.
func (m Model) syncStatus() string {
	if m.session == nil {
		return "not connected"
	}
	st := m.session.Poller.Status()
	switch st.State {
	case appsync.SyncRunning:
		return "syncing…"
	case appsync.SyncError:
		return "⚠ offline"
	}
	if st.LastSync.IsZero() {
		return "waiting"
	}
	return "synced " + notifications.RelativeTime(st.LastSync, time.Now())
}

// statusText returns the status bar content: a toast, the auth warning
// or key hints.
func (m Model) statusText() (string, lipgloss.Style) {
	if m.toast.Text != "" {
		return m.toast.Text, theme.ToastStyle(m.toast.Error)
	}
	if m.authErrorMessage != "" && m.currentView == ViewMain {
		return m.authErrorMessage, theme.ToastStyle(true)
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back", theme.StatusBarStyle
	case ViewCommand:
		return "enter execute | esc back", theme.StatusBarStyle
	case ViewSetup:
		return "enter next | esc cancel", theme.StatusBarStyle
	}
	if m.bell.IsOpen() {
		return "enter open | r read | R read all | d delete | u refresh | esc close", theme.StatusBarStyle
	}
	return "b notifications | u refresh | c connection | ? help | q quit", theme.StatusBarStyle
}

func (m *Model) showToast(t notify.Toast) tea.Cmd {
	if t.Text == "" {
		return nil
	}
	m.toastID++
	m.toast = t
	id := m.toastID
	return tea.Tick(notify.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.CmdRefresh, "sync":
		if m.session != nil {
			m.session.Poller.Refresh()
		}
		if m.bell.IsOpen() {
			return m.loadInbox()
		}
		return nil
	case command.CmdReadAll:
		if m.bell.IsOpen() {
			return m.markAllRead()
		}
		load := m.toggleBell()
		if load == nil {
			return nil
		}
		return tea.Sequence(load, m.markAllRead())
	case command.CmdUnread:
		return m.dropdown.SetUnreadOnly(true)
	case command.CmdAll:
		return m.dropdown.SetUnreadOnly(false)
	case command.CmdSetup, "config":
		m.previousView = ViewMain
		m.currentView = ViewSetup
		return m.setupView.Init()
	case command.CmdQuit, "q":
		return tea.Quit
	default:
		return m.showToast(notify.Toast{Text: fmt.Sprintf("Unknown command %q", cmd), Error: true})
	}
}

// --- Commands ---

// withTimeout runs fn under the per-request timeout.
func (m Model) withTimeout(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.opts.Config.RequestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) loadCached() tea.Cmd {
	p := m.session.Poller
	logger := m.opts.Logger
	return func() tea.Msg {
		res, err := p.LoadCached(context.Background())
		if err != nil {
			logger.Warn("reading notification snapshot", zap.Error(err))
		}
		return cachedMsg{result: res}
	}
}

func (m Model) loadInbox() tea.Cmd {
	inbox := m.session.Inbox
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		return inboxLoadedMsg{err: inbox.Load(ctx)}
	})
}

func (m Model) markRead(id string) tea.Cmd {
	inbox := m.session.Inbox
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		err := inbox.MarkAsRead(ctx, id)
		return actionDoneMsg{toast: notify.ReadToast(err), authErr: source.IsAuthError(err)}
	})
}

func (m Model) markAllRead() tea.Cmd {
	if m.session == nil {
		return nil
	}
	inbox := m.session.Inbox
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		res, err := inbox.MarkAllAsRead(ctx)
		return actionDoneMsg{toast: notify.ReadAllToast(res), authErr: source.IsAuthError(err)}
	})
}

func (m Model) deleteNotification(id string) tea.Cmd {
	inbox := m.session.Inbox
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		err := inbox.Delete(ctx, id)
		return actionDoneMsg{toast: notify.DeleteToast(err), authErr: source.IsAuthError(err)}
	})
}

func (m Model) openNotification(n model.Notification) tea.Cmd {
	inbox := m.session.Inbox
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		path, err := inbox.Open(ctx, n)
		if err != nil {
			return actionDoneMsg{toast: notify.ReadToast(err), authErr: source.IsAuthError(err)}
		}
		return actionDoneMsg{toast: notify.Toast{Text: "→ " + path}, location: path}
	})
}
