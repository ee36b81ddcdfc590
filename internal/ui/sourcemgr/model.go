// Package sourcemgr lists the configured wikis and lets the user disable
// or delete the ones saved from the add-wiki form.
package sourcemgr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
	"github.com/nhle/notification-center/internal/theme"
)

// Mode represents the current state of the manager.
type Mode int

const (
	ModeList          Mode = iota // List configured wikis
	ModeConfirmDelete             // Confirm wiki deletion
)

// Entry is one row of the manager.
type Entry struct {
	Source model.SourceConfig

	// FromFile marks wikis defined in the config file. They are only
	// changed by editing that file.
	FromFile bool

	Unread   map[model.BadgeType]int
	LastRead time.Time
}

// DoneMsg signals the manager should close.
type DoneMsg struct{}

// SourceToggledMsg signals a wiki was enabled or disabled.
type SourceToggledMsg struct {
	Source model.SourceConfig
}

// SourceDeletedMsg signals a wiki was deleted.
type SourceDeletedMsg struct {
	Name string
}

type entriesLoadedMsg struct {
	entries []Entry
	err     error
}

type sourceSavedMsg struct {
	source model.SourceConfig
	err    error
}

type sourceDeletedMsg struct {
	name string
	err  error
}

// Model is the Bubble Tea model of the wiki manager.
type Model struct {
	mode        Mode
	store       store.Store
	fileSources []model.SourceConfig
	entries     []Entry
	selectedIdx int

	confirmDelete *huh.Form
	// heap allocated so huh's Value pointer survives model copies
	deleteConfirm *bool

	statusMsg string

	// removeToken deletes the keyring token of a wiki.
	removeToken func(name string) error

	keys          *keys.KeyMap
	width, height int
}

// New creates a manager over the wikis saved in s. fileSources are the
// wikis of the config file.
func New(s store.Store, fileSources []model.SourceConfig, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:          ModeList,
		store:         s,
		fileSources:   fileSources,
		deleteConfirm: new(bool),
		removeToken:   removeToken,
		keys:          k,
		width:         width,
		height:        height,
	}
}

// Start shows the list and reloads it.
func (m *Model) Start() tea.Cmd {
	m.mode = ModeList
	m.statusMsg = ""
	return m.loadEntries()
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Entries returns the listed wikis.
func (m Model) Entries() []Entry { return m.entries }

// Selected returns the index of the highlighted wiki.
func (m Model) Selected() int { return m.selectedIdx }

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading wikis: %v", msg.err)
			return m, nil
		}
		m.entries = msg.entries
		if len(m.entries) <= m.selectedIdx {
			m.selectedIdx = max(0, len(m.entries)-1)
		}
		return m, nil

	case sourceSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving wiki: %v", msg.err)
			return m, nil
		}
		state := "disabled"
		if msg.source.Enabled {
			state = "enabled"
		}
		m.statusMsg = fmt.Sprintf("%s %s", msg.source.Name, state)
		return m, tea.Batch(
			m.loadEntries(),
			func() tea.Msg { return SourceToggledMsg{Source: msg.source} },
		)

	case sourceDeletedMsg:
		m.mode = ModeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error deleting wiki: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("%s deleted", msg.name)
		return m, tea.Batch(
			m.loadEntries(),
			func() tea.Msg { return SourceDeletedMsg{Name: msg.name} },
		)

	case tea.KeyMsg:
		if m.mode == ModeList {
			return m.handleListKeys(msg)
		}
	}

	if m.mode == ModeConfirmDelete {
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

// handleListKeys processes key events in the list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.entries) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.entries)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.entries) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.entries) - 1
			}
		}

	case key.Matches(msg, m.keys.ToggleEnabled):
		entry, ok := m.selectedEditable()
		if !ok {
			return m, nil
		}
		src := entry.Source
		src.Enabled = !src.Enabled
		return m, m.saveSource(src)

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selectedEditable(); !ok {
			return m, nil
		}
		*m.deleteConfirm = false
		m.confirmDelete = m.buildDeleteConfirmForm()
		m.mode = ModeConfirmDelete
		return m, m.confirmDelete.Init()
	}

	return m, nil
}

// selectedEditable returns the highlighted entry unless it comes from the
// config file, in which case the status line says so.
func (m *Model) selectedEditable() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	entry := m.entries[m.selectedIdx]
	if entry.FromFile {
		m.statusMsg = fmt.Sprintf("%s is defined in the config file", entry.Source.Name)
		return Entry{}, false
	}
	return entry, true
}

// --- Delete Confirmation ---

func (m *Model) buildDeleteConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.entries) {
		name = m.entries[m.selectedIdx].Source.Name
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete wiki %q?", name)).
				Description(
					"This removes the wiki, its token and its " +
						"cached notifications.",
				).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(m.deleteConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmDelete == nil {
		m.mode = ModeList
		return m, nil
	}

	mdl, cmd := m.confirmDelete.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmDelete = f
	}

	switch m.confirmDelete.State {
	case huh.StateCompleted:
		if *m.deleteConfirm && m.selectedIdx < len(m.entries) {
			return m, m.deleteSource(m.entries[m.selectedIdx].Source)
		}
		m.mode = ModeList
		return m, nil
	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- View ---

// View renders the manager based on the current mode.
func (m Model) View() string {
	if m.mode == ModeConfirmDelete && m.confirmDelete != nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(m.confirmDelete.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Wikis"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		b.WriteString(emptyStyle.Render(
			"No wikis configured.\nPress 'a' on the main screen to add one.",
		))
	} else {
		for i, e := range m.entries {
			b.WriteString(m.renderEntry(i, e))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	b.WriteString(hintStyle.Render("space enable/disable | d delete | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(b.String())
}

func (m Model) renderEntry(idx int, e Entry) string {
	kind := "local"
	if e.Source.Foreign {
		kind = "foreign"
	}

	enabledLabel := "enabled"
	enabledColor := theme.ColorGreen
	if !e.Source.Enabled {
		enabledLabel = "disabled"
		enabledColor = theme.ColorGray
	}
	statusLabel := lipgloss.NewStyle().
		Foreground(enabledColor).
		Render(enabledLabel)

	line := fmt.Sprintf("%s  [%s]  %s  %d alerts, %d notices",
		e.Source.Name, kind, statusLabel,
		e.Unread[model.BadgeAlert], e.Unread[model.BadgeMessage],
	)
	if !e.LastRead.IsZero() {
		line += "  read " + e.LastRead.Local().Format("2006-01-02 15:04")
	}
	if e.FromFile {
		line += "  " + theme.DimmedStyle.Render("(config file)")
	}

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// loadEntries returns a command listing the config file wikis followed by
// the saved ones, each with its unread counts and latest read mark.
func (m Model) loadEntries() tea.Cmd {
	s := m.store
	fileSources := m.fileSources
	return func() tea.Msg {
		ctx := context.Background()

		saved, err := s.GetSources(ctx)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}

		seen := map[string]bool{}
		var entries []Entry
		add := func(src model.SourceConfig, fromFile bool) error {
			if seen[src.Name] {
				return nil
			}
			seen[src.Name] = true

			e := Entry{Source: src, FromFile: fromFile, Unread: map[model.BadgeType]int{}}
			for _, badge := range []model.BadgeType{model.BadgeAlert, model.BadgeMessage} {
				n, err := s.GetUnreadCount(ctx, src.Name, badge)
				if err != nil {
					return err
				}
				e.Unread[badge] = n
			}
			marks, err := s.GetReadMarks(ctx, src.Name)
			if err != nil {
				return err
			}
			if 0 < len(marks) {
				e.LastRead = marks[len(marks)-1].MarkedAt
			}
			entries = append(entries, e)
			return nil
		}

		for _, src := range fileSources {
			if err := add(src, true); err != nil {
				return entriesLoadedMsg{err: err}
			}
		}
		for _, src := range saved {
			if err := add(src, false); err != nil {
				return entriesLoadedMsg{err: err}
			}
		}

		return entriesLoadedMsg{entries: entries}
	}
}

// saveSource returns a command that persists a wiki to the store.
func (m Model) saveSource(src model.SourceConfig) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.UpsertSource(context.Background(), src)
		return sourceSavedMsg{source: src, err: err}
	}
}

// deleteSource returns a command that removes a wiki and its token.
func (m Model) deleteSource(src model.SourceConfig) tea.Cmd {
	s := m.store
	removeToken := m.removeToken
	return func() tea.Msg {
		if err := s.DeleteSource(context.Background(), src.Name); err != nil {
			return sourceDeletedMsg{name: src.Name, err: err}
		}

		if err := removeToken(src.Name); err != nil {
			glog.Warningf("[sourcemgr]removing token of %s: %s", src.Name, err)
		}
		return sourceDeletedMsg{name: src.Name}
	}
}

// removeToken deletes the token of wiki name. Local wikis never had one.
func removeToken(name string) error {
	err := credential.Delete(credential.TokenKey(name))
	if errors.Is(err, credential.ErrNotFound) {
		return nil
	}
	return err
}
