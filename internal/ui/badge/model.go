// Package badge implements a header badge: a counter that opens a popup
// listing one group per source, newest group first.
package badge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/controller"
	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui/detail"
	"github.com/nhle/notification-center/internal/ui/subgroup"
)

// AllTalkReadMsg is sent once no unread talk page notification is left
// under a badge that had one.
type AllTalkReadMsg struct {
	Badge model.BadgeType
}

// Options configures a badge.
type Options struct {
	// MarkReadWhenSeen marks every list read once the popup has loaded.
	MarkReadWhenSeen bool

	// MarkAllReadOnLocal shows the bulk read control on groups of local
	// wikis too. Foreign groups always have it.
	MarkAllReadOnLocal bool

	Keys *keys.KeyMap
}

// Model is one header badge and its popup.
type Model struct {
	controller *controller.Controller
	keys       *keys.KeyMap
	opts       Options

	groups []*subgroup.Model
	byName map[string]*subgroup.Model
	focus  int

	open    bool
	loading bool
	spinner spinner.Model

	detail detail.Model

	unreadTalk bool
	status     string

	width  int
	height int
}

// New creates a badge showing the lists of c.
func New(c *controller.Controller, opts Options) *Model {
	if opts.Keys == nil {
		opts.Keys = keys.DefaultKeyMap()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.DimmedStyle

	return &Model{
		controller: c,
		keys:       opts.Keys,
		opts:       opts,
		byName:     map[string]*subgroup.Model{},
		loading:    true,
		spinner:    s,
		detail:     detail.New(opts.Keys, 80, 10),
		width:      80,
		height:     20,
	}
}

// Type returns the badge type.
func (b *Model) Type() model.BadgeType { return b.controller.Badge() }

// Controller returns the controller owning the badge's lists.
func (b *Model) Controller() *controller.Controller { return b.controller }

// Groups returns the group views in display order.
func (b *Model) Groups() []*subgroup.Model {
	out := make([]*subgroup.Model, len(b.groups))
	copy(out, b.groups)
	return out
}

// IsOpen reports whether the popup is shown.
func (b *Model) IsOpen() bool { return b.open }

// IsLoading reports whether the first fetch is still outstanding.
func (b *Model) IsLoading() bool { return b.loading }

// NumItems returns the number of notifications under the badge.
func (b *Model) NumItems() int { return b.controller.NumItems() }

// HasUnseen reports whether the badge has notifications the user has not
// seen yet.
func (b *Model) HasUnseen() bool { return b.controller.HasUnseen() }

// Status returns the last transport error shown on the badge.
func (b *Model) Status() string { return b.status }

// Present shows p under the groups. Groups use the badge as their
// overlay.
func (b *Model) Present(p subgroup.Popup) {
	b.detail.Show(p)
}

// Detail returns the notification currently opened, if any.
func (b *Model) Detail() (subgroup.Popup, bool) { return b.detail.Popup() }

// Open shows the popup and refreshes every list. Opening marks all
// notifications seen.
func (b *Model) Open() tea.Cmd {
	b.open = true

	cmds := []tea.Cmd{b.controller.MarkAllSeen(), b.controller.FetchAll()}
	if b.loading {
		cmds = append(cmds, b.spinner.Tick)
	}
	if !b.loading && b.opts.MarkReadWhenSeen {
		cmds = append(cmds, b.controller.MarkAllRead())
	}
	return tea.Batch(cmds...)
}

// Close hides the popup.
func (b *Model) Close() {
	b.open = false
	b.detail.Hide()
}

// SetSize sets the drawing area of the popup.
func (b *Model) SetSize(width, height int) {
	b.width = width
	b.height = height
	b.detail.SetSize(width-4, max(5, height/2))
	b.relayout()
}

// Update applies transport results for this badge and, while open,
// handles key presses.
func (b *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case controller.FetchedMsg:
		if msg.Badge != b.Type() {
			return nil
		}
		return b.onFetched(msg)

	case controller.MarkReadResultMsg:
		if msg.Badge != b.Type() {
			return nil
		}
		if err := b.controller.ApplyMarkRead(msg); err != nil {
			b.status = fmt.Sprintf("%s: %s", msg.Source, err)
			return nil
		}
		b.status = ""
		b.sortGroups()
		return b.checkTalk()

	case controller.MarkSeenResultMsg:
		if msg.Badge == b.Type() && msg.Err != nil {
			b.status = fmt.Sprintf("%s: %s", msg.Source, msg.Err)
		}
		return nil

	case spinner.TickMsg:
		if !b.loading {
			return nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if !b.open {
			return nil
		}
		return b.handleKey(msg)
	}

	return nil
}

func (b *Model) onFetched(msg controller.FetchedMsg) tea.Cmd {
	created, err := b.controller.ApplyFetch(msg)
	if err != nil {
		b.status = fmt.Sprintf("%s: %s", msg.Source, err)
		return nil
	}
	b.status = ""

	if created != nil {
		group, err := subgroup.New(b.controller, created, subgroup.Options{
			ShowMarkAllRead: created.IsForeign() || b.opts.MarkAllReadOnLocal,
			Overlay:         b,
			Keys:            b.keys,
		})
		if err != nil {
			glog.Errorf("[badge][%s]creating group %s: %s", b.Type(), created.Name(), err)
			return nil
		}
		// the first reset happened before the group subscribed
		group.ResetItemsFromModel(nil)
		group.ToggleMarkAllReadButton()
		b.byName[created.Name()] = group
		b.groups = append(b.groups, group)
	}

	b.sortGroups()

	var cmds []tea.Cmd
	if b.loading {
		b.loading = false
		if b.open && b.opts.MarkReadWhenSeen {
			cmds = append(cmds, b.controller.MarkAllRead())
		}
	}
	if b.open {
		cmds = append(cmds, b.controller.MarkAllSeen())
	}
	cmds = append(cmds, b.checkTalk())
	return tea.Batch(cmds...)
}

// RemoveSource unregisters source name and drops its group.
func (b *Model) RemoveSource(name string) tea.Cmd {
	b.controller.Unregister(name)

	group, ok := b.byName[name]
	if !ok {
		return b.checkTalk()
	}
	group.Close()
	delete(b.byName, name)
	b.groups = slices.DeleteFunc(b.groups, func(g *subgroup.Model) bool { return g == group })
	if len(b.groups) <= b.focus {
		b.focus = max(0, len(b.groups)-1)
	}

	b.sortGroups()
	return b.checkTalk()
}

// checkTalk emits AllTalkReadMsg when the last unread talk notification
// went away.
func (b *Model) checkTalk() tea.Cmd {
	had := b.unreadTalk
	b.unreadTalk = b.controller.HasUnreadTalk()
	if !had || b.unreadTalk {
		return nil
	}
	badge := b.Type()
	return func() tea.Msg { return AllTalkReadMsg{Badge: badge} }
}

// sortGroups orders groups newest first with ties broken by descending
// name, shows titles only when there is more than one group and keeps
// focus on the same group.
func (b *Model) sortGroups() {
	var focused *subgroup.Model
	if 0 <= b.focus && b.focus < len(b.groups) {
		focused = b.groups[b.focus]
	}

	slices.SortStableFunc(b.groups, compareGroups)

	showTitles := 1 < len(b.groups)
	b.focus = 0
	for i, g := range b.groups {
		g.SetTitleVisible(showTitles)
		if g == focused {
			b.focus = i
		}
	}
	b.refocus()
	b.relayout()
}

func compareGroups(a, b *subgroup.Model) int {
	if c := b.Timestamp().Compare(a.Timestamp()); c != 0 {
		return c
	}
	return strings.Compare(b.ID(), a.ID())
}

func (b *Model) refocus() {
	for i, g := range b.groups {
		if i == b.focus {
			g.Focus()
		} else {
			g.Blur()
		}
	}
}

// relayout splits the popup height among the groups.
func (b *Model) relayout() {
	if len(b.groups) == 0 {
		return
	}
	// border, badge title and status line
	available := max(len(b.groups)*2, b.height-4)
	share := available / len(b.groups)
	for _, g := range b.groups {
		rows := min(share, g.ListWidget().Len()+1)
		g.SetSize(max(20, b.width-4), max(2, rows))
	}
}

func (b *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case b.detail.Visible():
		var cmd tea.Cmd
		b.detail, cmd = b.detail.Update(msg)
		return cmd

	case key.Matches(msg, b.keys.Back):
		b.Close()
		return nil

	case key.Matches(msg, b.keys.NextGroup):
		if 0 < len(b.groups) {
			b.focus = (b.focus + 1) % len(b.groups)
			b.refocus()
		}
		return nil

	case key.Matches(msg, b.keys.PrevGroup):
		if 0 < len(b.groups) {
			b.focus = (b.focus - 1 + len(b.groups)) % len(b.groups)
			b.refocus()
		}
		return nil
	}

	if 0 <= b.focus && b.focus < len(b.groups) {
		return b.groups[b.focus].Update(msg)
	}
	return nil
}

// Label renders the badge for the header bar.
func (b *Model) Label(active bool) string {
	title := "Alerts"
	if b.Type() == model.BadgeMessage {
		title = "Notices"
	}

	if b.loading {
		return theme.DimmedStyle.Padding(0, 1).Render(b.spinner.View() + " " + title)
	}
	return theme.BadgeStyle(b.HasUnseen(), active).
		Render(fmt.Sprintf("%s %d", title, b.controller.UnreadCount()))
}

// View renders the popup, or nothing when it is closed.
func (b *Model) View() string {
	if !b.open {
		return ""
	}

	var parts []string
	switch {
	case b.loading:
		parts = append(parts, theme.DimmedStyle.Render(b.spinner.View()+" Loading..."))
	case len(b.groups) == 0:
		parts = append(parts, theme.DimmedStyle.Render("No notifications."))
	default:
		for _, g := range b.groups {
			parts = append(parts, g.View())
		}
	}

	if b.status != "" {
		parts = append(parts, theme.ErrorStyle.Render(b.status))
	}
	if b.detail.Visible() {
		parts = append(parts, b.detail.View())
	}

	style := theme.PopupStyle
	if 4 < b.width {
		style = style.Width(b.width - 4)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
