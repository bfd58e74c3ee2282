package setup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/camphub/internal/keys"
	"github.com/nhle/camphub/internal/theme"
)

// validateTimeout bounds the connection test.
const validateTimeout = 15 * time.Second

// Mode represents the current state of the setup view.
type Mode int

const (
	ModeForm       Mode = iota // Editing base URL and token
	ModeValidating             // Testing connection
	ModeResult                 // Show validation result
)

// DoneMsg signals the setup view closed without saving.
type DoneMsg struct{}

// SavedMsg signals a validated connection was saved.
type SavedMsg struct {
	BaseURL   string
	Token     string
	Principal string
}

// validateResultMsg carries the outcome of a connection test.
type validateResultMsg struct {
	principal string
	err       error
}

// Deps are the side effects the setup view needs.
type Deps struct {
	// Validate tests the connection and returns a label for the principal.
	Validate func(ctx context.Context, baseURL, token string) (string, error)
	// Save persists the base URL and token.
	Save func(baseURL, token string) error
}

// Model is the Bubble Tea model for connection setup.
type Model struct {
	mode Mode
	deps Deps
	form *huh.Form

	// Form field values (huh binds to these)
	formBaseURL string
	formToken   string

	principal string
	err       error
	spinner   spinner.Model

	keys          *keys.KeyMap
	width, height int
}

// New creates a setup view prefilled with baseURL.
func New(deps Deps, k *keys.KeyMap, baseURL string, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:        ModeForm,
		deps:        deps,
		formBaseURL: baseURL,
		spinner:     sp,
		keys:        k,
		width:       width,
		height:      height,
	}
	m.form = m.buildForm()
	return m
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case validateResultMsg:
		m.principal = msg.principal
		m.err = msg.err
		m.mode = ModeResult
		if msg.err != nil {
			return m, nil
		}
		saved := SavedMsg{BaseURL: m.baseURL(), Token: m.token(), Principal: msg.principal}
		return m, func() tea.Msg { return saved }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			if key.Matches(msg, m.keys.Back) {
				m.mode = ModeForm
				m.form = m.buildForm()
				return m, m.form.Init()
			}
			return m, nil
		case ModeResult:
			return m.handleResultKeys(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.String() == "r" && m.err != nil:
		return m.startValidation()
	case msg.String() == "e" && m.err != nil:
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	case msg.String() == "enter", key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.startValidation()
	case huh.StateAborted:
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

func (m Model) startValidation() (Model, tea.Cmd) {
	m.mode = ModeValidating
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.validateAndSave())
}

// validateAndSave tests the connection, then saves on success.
func (m Model) validateAndSave() tea.Cmd {
	deps := m.deps
	baseURL, token := m.baseURL(), m.token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()

		if deps.Validate == nil {
			return validateResultMsg{err: errors.New("connection test unavailable")}
		}
		principal, err := deps.Validate(ctx, baseURL, token)
		if err != nil {
			return validateResultMsg{principal: principal, err: err}
		}

		if deps.Save != nil {
			if err := deps.Save(baseURL, token); err != nil {
				return validateResultMsg{
					principal: principal,
					err:       fmt.Errorf("connection OK but save failed: %w", err),
				}
			}
		}
		return validateResultMsg{principal: principal}
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("CampHub API URL (e.g., https://api.camphub.example)").
				Placeholder("http://localhost:8089").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API Token").
				Description("Bearer token from your CampHub session").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken).
				Validate(validateRequired("Token")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(m.formBaseURL), "/")
}

func (m Model) token() string {
	return strings.TrimSpace(m.formToken)
}

// View renders the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGreen).
		MarginBottom(1).
		Render("CampHub connection")

	var body string
	switch m.mode {
	case ModeValidating:
		body = fmt.Sprintf("%s Testing connection...\n\nPress esc to cancel.", m.spinner.View())
	case ModeResult:
		body = m.viewResult()
	default:
		body = m.form.View()
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (m Model) viewResult() string {
	hint := lipgloss.NewStyle().Foreground(theme.ColorGray)

	if m.err != nil {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Connection failed") +
			"\n\n" + m.err.Error() + "\n\n" +
			hint.Render("r retry | e edit | enter/esc back")
	}

	name := m.principal
	if name == "" {
		name = "OK"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Connection successful") +
		"\n\n" + fmt.Sprintf("Signed in as: %s", name) + "\n\n" +
		hint.Render("enter/esc back")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}
