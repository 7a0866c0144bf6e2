package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps bordered content areas such as the help overlay
// and the admin stat cards.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders completed tasks and inactive users.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle renders inline error messages such as a failed login.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// DueDateStyle renders due-date annotations on list items.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle marks tasks whose due date has passed.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "pending":
		return base.Foreground(ColorBlue)
	case "in-progress":
		return base.Foreground(ColorYellow)
	case "completed":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given priority.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case "high":
		return base.Foreground(ColorRed)
	case "medium":
		return base.Foreground(ColorYellow)
	case "low":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// RoleStyle returns a color-coded style for the given user role.
func RoleStyle(role string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	if role == "admin" {
		return base.Foreground(ColorMagenta)
	}
	return base.Foreground(ColorGray)
}
