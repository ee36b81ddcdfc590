package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
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

// PopupStyle wraps a badge's open notification popup.
var PopupStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// OverlayStyle frames transient popups opened from a notification.
var OverlayStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// GroupTitleStyle renders a source group's title label.
var GroupTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// GroupLinkStyle renders a source group's title when it links to the
// source wiki.
var GroupLinkStyle = GroupTitleStyle.
	Foreground(ColorBlue).
	Underline(true)

// MarkAllReadStyle renders the per-group bulk read control.
var MarkAllReadStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, true).
	BorderForeground(ColorBlue).
	Padding(0, 1)

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

// UnreadMarkerStyle is the dot drawn in front of unread notifications.
var UnreadMarkerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// DimmedStyle renders read notifications and a loading badge.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// BundleStyle marks notifications that stand for a bundle.
var BundleStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// TalkStyle marks talk page notifications and the talk indicator.
var TalkStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Bold(true)

// ErrorStyle renders transport errors in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BadgeStyle returns the style of a header badge. Unseen badges are
// highlighted, active badges are inverted.
func BadgeStyle(unseen, active bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch {
	case active:
		return base.Foreground(ColorBlue).Background(ColorWhite)
	case unseen:
		return base.Foreground(ColorWhite).Background(ColorRed)
	default:
		return base.Foreground(ColorWhite).Background(ColorSubtle)
	}
}

// SourceLabelStyle returns the style of a notification's source label.
func SourceLabelStyle(foreign bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if foreign {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorGray)
}
