// Package sourceform is the form used to add a wiki to the notification
// center.
package sourceform

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// SourceSubmittedMsg is dispatched when the form is completed.
type SourceSubmittedMsg struct {
	Source model.SourceConfig
	Token  string
}

// SourceFormCancelMsg is dispatched when the user cancels the form.
type SourceFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name         string
	title        string
	pageURL      string
	apiURL       string
	token        string
	foreign      bool
	pollInterval int
}

// Model is the Bubble Tea model for the add-wiki form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	taken  map[string]bool
	width  int
	height int
}

// New creates a new source form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{foreign: true, pollInterval: 120},
		taken:  map[string]bool{},
		width:  width,
		height: height,
	}
}

// Start resets the form. taken lists source names already in use.
func (m *Model) Start(taken []string) tea.Cmd {
	*m.fb = formBindings{foreign: true, pollInterval: 120}
	m.taken = make(map[string]bool, len(taken))
	for _, name := range taken {
		m.taken[name] = true
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the source form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return SourceFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the source form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Add Wiki") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("commonswiki").
				Value(&m.fb.name).
				Validate(m.validateName),
			huh.NewInput().
				Title("Title").
				Placeholder("Wikimedia Commons").
				Value(&m.fb.title),
			huh.NewInput().
				Title("Page URL").
				Placeholder("https://commons.wikimedia.org/wiki/$1 (optional)").
				Value(&m.fb.pageURL).
				Validate(validatePageURL),
			huh.NewInput().
				Title("API URL").
				Placeholder("https://commons.wikimedia.org/api/notifications").
				Value(&m.fb.apiURL).
				Validate(validateAPIURL),
			huh.NewInput().
				Title("Token").
				Placeholder("API token (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewConfirm().
				Title("Foreign wiki?").
				Value(&m.fb.foreign),
			huh.NewSelect[int]().
				Title("Poll interval").
				Options(
					huh.NewOption("1 minute", 60),
					huh.NewOption("2 minutes", 120),
					huh.NewOption("5 minutes", 300),
					huh.NewOption("15 minutes", 900),
				).
				Value(&m.fb.pollInterval),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	src := m.fb.source()
	token := strings.TrimSpace(m.fb.token)
	return func() tea.Msg { return SourceSubmittedMsg{Source: src, Token: token} }
}

// source builds the configuration entered in the form.
func (fb *formBindings) source() model.SourceConfig {
	name := strings.TrimSpace(fb.name)
	title := strings.TrimSpace(fb.title)
	if title == "" {
		title = name
	}
	return model.SourceConfig{
		Name:            name,
		Title:           title,
		URL:             strings.TrimSpace(fb.pageURL),
		APIURL:          strings.TrimSpace(fb.apiURL),
		Foreign:         fb.foreign,
		Enabled:         true,
		PollIntervalSec: fb.pollInterval,
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Name is required")
	}
	if strings.ContainsAny(s, " \t/") {
		return fmt.Errorf("Name must not contain spaces or slashes")
	}
	if m.taken[s] {
		return fmt.Errorf("%s is already configured", s)
	}
	return nil
}

func validatePageURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "$1") {
		return fmt.Errorf("Page URL must contain $1")
	}
	return validateHTTPURL(s)
}

func validateAPIURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("API URL is required")
	}
	return validateHTTPURL(s)
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid URL, use http:// or https://")
	}
	return nil
}
