package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nhle/camphub/internal/model"
)

// Theme names accepted by display.theme.
const (
	Default = "default"
	Plain   = "plain"
)

// Apply switches the global color profile. Plain renders without color.
func Apply(name string) {
	if name == Plain {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorForest = lipgloss.AdaptiveColor{Dark: "#2D6A4F", Light: "#1B4332"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorForest).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlays such as help and setup.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DropdownStyle frames the notification dropdown.
var DropdownStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorGreen)

// BadgeStyle renders the unread count next to the bell.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// UnreadStyle marks unread titles.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ReadStyle dims titles already read.
var ReadStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ToastStyle returns the status bar style for a transient message.
func ToastStyle(isError bool) lipgloss.Style {
	base := StatusBarStyle.Bold(true)
	if isError {
		return base.Background(ColorRed).Foreground(lipgloss.Color("#FFFFFF"))
	}
	return base.Background(ColorGreen).Foreground(lipgloss.Color("#1A202C"))
}

// TypeStyle returns a color-coded style for a notification type.
func TypeStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch t {
	case model.TypeBookingRejected, model.TypeBookingCancelled,
		model.TypePaymentFailed, model.TypeReturnRequestRejected,
		model.TypeExtensionRequestRejected, model.TypeDisputeRejected,
		model.TypeItemRejected:
		return base.Foreground(ColorRed)
	case model.TypeDisputeCreated, model.TypeItemPendingApproval,
		model.TypeReturnRequestPending:
		return base.Foreground(ColorOrange)
	case model.TypeBookingCreated, model.TypeReturnRequestCreated,
		model.TypeExtensionRequestCreated:
		return base.Foreground(ColorYellow)
	case model.TypeSystemAnnouncement:
		return base.Foreground(ColorBlue)
	case "":
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGreen)
	}
}
