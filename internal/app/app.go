package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/controller"
	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
	appsync "github.com/nhle/notification-center/internal/sync"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui"
	"github.com/nhle/notification-center/internal/ui/badge"
	helpview "github.com/nhle/notification-center/internal/ui/help"
	"github.com/nhle/notification-center/internal/ui/sourceform"
	"github.com/nhle/notification-center/internal/ui/sourcemgr"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewAddSource
	ViewManageSources
)

// badgeOrder is the order badges appear in the header.
var badgeOrder = []model.BadgeType{model.BadgeAlert, model.BadgeMessage}

// Options configures the root model.
type Options struct {
	// Open is the badge opened on start, or "" for none.
	Open model.BadgeType
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	cfg          *model.AppConfig
	store        store.Store
	keys         *keys.KeyMap
	badges       map[model.BadgeType]*badge.Model
	active       model.BadgeType
	openOnStart  model.BadgeType
	helpView     helpview.Model
	sourceForm   sourceform.Model
	sourceMgr    sourcemgr.Model
	poller       *appsync.Poller
	ready        bool

	// unreadTalk drives the talk indicator next to the badges.
	unreadTalk       bool
	authErrorMessage string
	statusMessage    string
}

// New creates a new root application model.
func New(cfg *model.AppConfig, s store.Store, opts Options) Model {
	km := keys.DefaultKeyMap()

	badges := make(map[model.BadgeType]*badge.Model, len(badgeOrder))
	for _, t := range badgeOrder {
		badges[t] = badge.New(controller.New(t), badge.Options{
			MarkReadWhenSeen: cfg.Badges.For(t).MarkReadWhenSeen,
			Keys:             km,
		})
	}

	return Model{
		currentView: ViewMain,
		cfg:         cfg,
		store:       s,
		keys:        km,
		badges:      badges,
		openOnStart: opts.Open,
		helpView:    helpview.New(km, 80, 24),
		sourceForm:  sourceform.New(80, 24),
		sourceMgr:   sourcemgr.New(s, cfg.Sources, km, 80, 24),
		poller:      appsync.New(badgeOrder...),
	}
}

// Init registers the configured sources before the poller starts so that
// every transport is in place for the first sync.
func (m Model) Init() tea.Cmd {
	return m.registerSources()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentHeight := m.layout.ContentHeight()
		for _, b := range m.badges {
			b.SetSize(m.layout.PopupWidth(), contentHeight)
		}
		m.helpView.SetSize(m.layout.ContentWidth(), contentHeight)
		m.sourceForm.SetSize(m.layout.ContentWidth(), contentHeight)
		m.sourceMgr.SetSize(m.layout.ContentWidth(), contentHeight)
		// Forward to the form so huh can calculate its layout.
		if m.currentView == ViewAddSource {
			var cmd tea.Cmd
			m.sourceForm, cmd = m.sourceForm.Update(msg)
			return m, cmd
		}
		return m, nil

	case sourcesRegisteredMsg:
		for _, rs := range msg.sources {
			m.register(rs)
		}
		cmds := []tea.Cmd{m.poller.Start()}
		// No sources: start with the add-wiki form.
		if len(msg.sources) == 0 {
			cmds = append(cmds, m.openSourceForm())
		} else if b, ok := m.badges[m.openOnStart]; ok {
			m.active = m.openOnStart
			cmds = append(cmds, b.Open())
		}
		return m, tea.Batch(cmds...)

	case sourceAddedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("adding wiki failed: %s", msg.err)
			return m, nil
		}
		m.register(msg.source)
		m.statusMessage = fmt.Sprintf("added %s", msg.source.src.Info().Name)
		return m, nil

	case appsync.SyncResultMsg:
		// Handle auth errors by showing a status bar message.
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		if 0 < msg.NewCount {
			m.statusMessage = fmt.Sprintf("%d new on %s", msg.NewCount, msg.Source)
		}

		cmd := m.routeToBadge(msg.Badge, controller.FetchedMsg{
			Badge:  msg.Badge,
			Source: msg.Source,
			Items:  msg.Items,
			Err:    msg.Error,
		})
		return m, tea.Batch(cmd, m.poller.WaitForNextResult())

	case controller.FetchedMsg:
		return m, m.routeToBadge(msg.Badge, msg)

	case controller.MarkReadResultMsg:
		return m, m.routeToBadge(msg.Badge, msg)

	case controller.MarkSeenResultMsg:
		return m, m.routeToBadge(msg.Badge, msg)

	case badge.AllTalkReadMsg:
		glog.V(1).Infof("[app]all talk notifications read")
		m.unreadTalk = false
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		for _, b := range m.badges {
			cmds = append(cmds, b.Update(msg))
		}
		return m, tea.Batch(cmds...)

	case sourceform.SourceSubmittedMsg:
		m.currentView = m.previousView
		return m, m.saveSource(msg.Source, msg.Token)

	case sourceform.SourceFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case sourcemgr.DoneMsg:
		m.currentView = ViewMain
		return m, nil

	case sourcemgr.SourceToggledMsg:
		if msg.Source.Enabled {
			return m, m.enableSource(msg.Source)
		}
		m.unregister(msg.Source.Name)
		return m, nil

	case sourcemgr.SourceDeletedMsg:
		m.unregister(msg.Name)
		return m, nil

	case tea.KeyMsg:
		if m.currentView == ViewAddSource {
			break
		}
		if m.currentView == ViewManageSources && m.sourceMgr.Mode() == sourcemgr.ModeConfirmDelete {
			break
		}
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey handles keys that work regardless of the open badge.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case msg.String() == "ctrl+c":
		m.poller.Stop()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewMain {
			m.poller.Stop()
			return tea.Quit, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case m.currentView != ViewMain:
		return nil, false

	case key.Matches(msg, m.keys.Alerts):
		return m.toggleBadge(model.BadgeAlert), true

	case key.Matches(msg, m.keys.Messages):
		return m.toggleBadge(model.BadgeMessage), true

	case key.Matches(msg, m.keys.Refresh):
		m.poller.RefreshAll()
		return nil, true

	case key.Matches(msg, m.keys.AddSource):
		return m.openSourceForm(), true

	case key.Matches(msg, m.keys.ManageSources):
		if b, ok := m.badges[m.active]; ok {
			b.Close()
			m.active = ""
		}
		m.previousView = m.currentView
		m.currentView = ViewManageSources
		return m.sourceMgr.Start(), true
	}

	return nil, false
}

// toggleBadge opens badge t, closing any other open badge, or closes it
// when it is already open.
func (m *Model) toggleBadge(t model.BadgeType) tea.Cmd {
	if m.active == t {
		m.badges[t].Close()
		m.active = ""
		return nil
	}
	if b, ok := m.badges[m.active]; ok {
		b.Close()
	}
	m.active = t
	return m.badges[t].Open()
}

func (m *Model) openSourceForm() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewAddSource
	return m.sourceForm.Start(m.badges[model.BadgeAlert].Controller().Sources())
}

// register adds a source to every badge and to the poller.
func (m *Model) register(rs registeredSource) {
	for _, t := range badgeOrder {
		m.badges[t].Controller().Register(rs.src)
	}
	m.poller.RegisterSource(rs.src, rs.interval)
}

// unregister removes a source from every badge and from the poller.
func (m *Model) unregister(name string) {
	for _, t := range badgeOrder {
		m.badges[t].RemoveSource(name)
	}
	m.poller.UnregisterSource(name)
	if m.unreadTalk && !m.badges[model.BadgeMessage].Controller().HasUnreadTalk() {
		m.unreadTalk = false
	}
	m.statusMessage = fmt.Sprintf("removed %s", name)
}

// routeToBadge hands a transport result to the badge it belongs to and
// refreshes the talk indicator.
func (m *Model) routeToBadge(t model.BadgeType, msg tea.Msg) tea.Cmd {
	b, ok := m.badges[t]
	if !ok {
		return nil
	}
	cmd := b.Update(msg)
	if t == model.BadgeMessage && b.Controller().HasUnreadTalk() {
		m.unreadTalk = true
	}
	if t == m.active && !b.IsOpen() {
		m.active = ""
	}
	return cmd
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMain:
		if b, ok := m.badges[m.active]; ok {
			cmd = b.Update(msg)
			if !b.IsOpen() {
				m.active = ""
			}
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewAddSource:
		m.sourceForm, cmd = m.sourceForm.Update(msg)
	case ViewManageSources:
		m.sourceMgr, cmd = m.sourceMgr.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Notifications", m.badgeLabels(), m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) badgeLabels() []string {
	labels := make([]string, 0, len(badgeOrder)+1)
	for _, t := range badgeOrder {
		labels = append(labels, m.badges[t].Label(t == m.active))
	}
	if m.unreadTalk {
		labels = append(labels, theme.TalkStyle.Render(" ✉ talk"))
	}
	return labels
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewAddSource:
		return m.sourceForm.View()
	case ViewManageSources:
		return m.sourceMgr.View()
	}

	if b, ok := m.badges[m.active]; ok {
		return b.View()
	}

	var lines []string
	for _, t := range badgeOrder {
		b := m.badges[t]
		status := b.Status()
		if status == "" {
			status = fmt.Sprintf("%d notifications", b.NumItems())
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", b.Label(false), theme.DimmedStyle.Render(status)))
	}
	return strings.Join(lines, "\n")
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.poller.GetStatuses()
	if len(statuses) == 0 {
		return "no wikis"
	}

	running := 0
	var staleNames []string
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			staleNames = append(staleNames, s.Source)
		}
	}

	if running > 0 {
		return fmt.Sprintf("syncing (%d)", running)
	}
	if len(staleNames) > 0 {
		return fmt.Sprintf("⚠ unreachable: %s", strings.Join(staleNames, ", "))
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Show auth error prominently when present.
	if m.authErrorMessage != "" && m.currentView == ViewMain {
		return theme.ErrorStyle.Render(m.authErrorMessage)
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | enter compact"
	case ViewAddSource:
		return "enter submit | esc cancel"
	case ViewManageSources:
		return "j/k move | space enable/disable | d delete | esc back"
	}

	if m.statusMessage != "" {
		return m.statusMessage + " | " + m.helpView.ShortView()
	}
	return m.helpView.ShortView()
}
