// Package detail shows a single notification opened from a badge popup.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui/subgroup"
)

// Model is the notification detail view.
type Model struct {
	popup    *subgroup.Popup
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Show replaces the displayed notification and scrolls to the top.
func (m *Model) Show(p subgroup.Popup) {
	m.popup = &p
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Hide dismisses the view.
func (m *Model) Hide() {
	m.popup = nil
}

// Visible reports whether a notification is shown.
func (m Model) Visible() bool { return m.popup != nil }

// Popup returns the shown notification.
func (m Model) Popup() (subgroup.Popup, bool) {
	if m.popup == nil {
		return subgroup.Popup{}, false
	}
	return *m.popup, true
}

// Update handles key presses while a notification is shown. Back hides
// the view; everything else scrolls.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.popup == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			m.Hide()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the framed notification, or nothing when hidden.
func (m Model) View() string {
	if m.popup == nil {
		return ""
	}

	style := theme.OverlayStyle
	if 4 < m.width {
		style = style.Width(m.width - 4)
	}
	return style.Render(m.viewport.View())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.popup == nil {
		return ""
	}

	p := m.popup
	var sections []string

	sections = append(sections, theme.GroupTitleStyle.Render(p.Title))

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	var meta []string
	if p.Source != "" {
		meta = append(meta, fmt.Sprintf("%s %s", metaStyle.Render("Wiki:"), valStyle.Render(p.Source)))
	}
	if p.Category != "" {
		meta = append(meta, fmt.Sprintf("%s %s", metaStyle.Render("Type:"), valStyle.Render(p.Category)))
	}
	if !p.Timestamp.IsZero() {
		meta = append(meta, fmt.Sprintf(
			"%s %s",
			metaStyle.Render("Date:"),
			valStyle.Render(p.Timestamp.Local().Format("2006-01-02 15:04")),
		))
	}
	state := "unread"
	if p.Read {
		state = "read"
	}
	meta = append(meta, metaStyle.Render(state))
	sections = append(sections, strings.Join(meta, "  "))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(1, min(m.width-8, 80))))
	sections = append(sections, separator)

	body := p.Body
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No details")
	}
	sections = append(sections, body)

	if p.URL != "" {
		sections = append(sections, "", theme.HelpStyle.Render(p.URL))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// frame and padding of the overlay
	m.viewport.Width = max(1, width-8)
	m.viewport.Height = max(1, height-4)
	if m.popup != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
