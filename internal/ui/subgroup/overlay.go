package subgroup

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/theme"
)

// Popup is transient content opened from a notification, shown above the
// notification list until dismissed.
type Popup struct {
	Title     string
	Body      string
	URL       string
	Source    string
	Category  string
	Timestamp time.Time
	Read      bool
}

// Overlay is the surface that hosts popups spawned by item widgets.
type Overlay interface {
	Present(p Popup)
}

// inlineOverlay is used when the host supplies no overlay; the group
// renders the popup under its own list.
type inlineOverlay struct {
	popup *Popup
}

func (o *inlineOverlay) Present(p Popup) {
	o.popup = &p
}

func (o *inlineOverlay) dismiss() bool {
	if o.popup == nil {
		return false
	}
	o.popup = nil
	return true
}

func (o *inlineOverlay) view(width int) string {
	if o.popup == nil {
		return ""
	}
	return RenderPopup(*o.popup, width)
}

// RenderPopup draws a popup framed for display over other content.
func RenderPopup(p Popup, width int) string {
	parts := []string{theme.GroupTitleStyle.Render(p.Title)}
	if p.Body != "" {
		parts = append(parts, p.Body)
	}
	if p.URL != "" {
		parts = append(parts, theme.HelpStyle.Render(p.URL))
	}

	style := theme.OverlayStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
