// Package subgroup renders the notifications of a single source and
// keeps that rendering in step with the source's list model.
package subgroup

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// ErrNoController is returned by New when the bulk read control is
// requested without a controller to act on it.
var ErrNoController = errors.New("subgroup: mark all read control needs a controller")

// notificationsPage is substituted into the source URL template.
const notificationsPage = "Special:Notifications"

// Controller performs read-state changes on behalf of the view. Both
// calls are fire-and-forget; their effect arrives as model events.
type Controller interface {
	MarkEntireListModelRead(name string) tea.Cmd
	MarkItemsRead(name string, ids []int64, read bool) tea.Cmd
}

// State is the lifecycle state of a group view.
type State int

const (
	StateEmpty State = iota
	StatePopulated
)

// Options configures a group view.
type Options struct {
	// ShowTitle renders the source title header.
	ShowTitle bool

	// ShowMarkAllRead renders the group's bulk read control while the
	// group has unread notifications.
	ShowMarkAllRead bool

	// Overlay hosts popups opened from notifications. When nil the group
	// draws them itself.
	Overlay Overlay

	// Keys defaults to keys.DefaultKeyMap().
	Keys *keys.KeyMap
}

// Model is the view of one source's notifications: a header with an
// optional title and bulk read control, followed by the sorted list.
type Model struct {
	controller Controller
	model      *model.SourceListModel
	overlay    Overlay
	inline     *inlineOverlay
	keys       *keys.KeyMap

	listWidget *SortedListWidget

	titleLabel string
	titleHref  string

	showTitle          bool
	showMarkAllRead    bool
	markAllReadVisible bool

	state   State
	focused bool
	width   int

	header        string
	headerRenders int

	unsubscribe func()
}

// New creates a group view for listModel and subscribes it to the
// model's events.
func New(controller Controller, listModel *model.SourceListModel, opts Options) (*Model, error) {
	if opts.ShowMarkAllRead && controller == nil {
		return nil, ErrNoController
	}

	v := &Model{
		controller:      controller,
		model:           listModel,
		keys:            opts.Keys,
		showTitle:       opts.ShowTitle,
		showMarkAllRead: opts.ShowMarkAllRead,
		listWidget:      NewSortedListWidget(compareWidgets),
		titleLabel:      listModel.Title(),
		width:           80,
	}
	if v.keys == nil {
		v.keys = keys.DefaultKeyMap()
	}
	if opts.Overlay != nil {
		v.overlay = opts.Overlay
	} else {
		v.inline = &inlineOverlay{}
		v.overlay = v.inline
	}
	if tmpl := listModel.SourceURL(); tmpl != "" {
		v.titleHref = strings.ReplaceAll(tmpl, "$1", notificationsPage)
	}

	v.unsubscribe = listModel.Subscribe(model.ListHandlers{
		OnUpdate: func(items []*model.NotificationItem) {
			v.ResetItemsFromModel(items)
			v.ToggleMarkAllReadButton()
		},
		OnDiscard: func(items []*model.NotificationItem) {
			v.OnModelDiscardItems(items)
			v.ToggleMarkAllReadButton()
		},
		// read state of single items decides whether the bulk read
		// control is shown
		OnItemUpdate: func([]*model.NotificationItem) {
			v.ToggleMarkAllReadButton()
		},
	})

	v.ToggleMarkAllReadButton()
	v.renderHeader()
	return v, nil
}

// Close unsubscribes the view from its model.
func (v *Model) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// ResetItemsFromModel drops every rendered widget and builds new ones for
// items. A nil items pulls the full current set from the model.
func (v *Model) ResetItemsFromModel(items []*model.NotificationItem) {
	if items == nil {
		items = v.model.Items()
	}

	widgets := make([]*ItemWidget, 0, len(items))
	for _, item := range items {
		widgets = append(widgets, newItemWidget(v.controller, v.model.Name(), item, v.overlay))
	}

	v.listWidget.ClearItems()
	v.listWidget.AddItems(widgets...)
	v.state = StatePopulated

	glog.V(2).Infof("[group][%s]reset widgets = %d", v.model.Name(), len(widgets))
}

// OnModelDiscardItems removes the widgets of discarded items and leaves
// every other widget in place. Items without a widget are skipped.
func (v *Model) OnModelDiscardItems(items []*model.NotificationItem) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID())
	}
	removed := v.listWidget.RemoveItems(ids...)

	glog.V(2).Infof("[group][%s]discard widgets = %d/%d", v.model.Name(), len(removed), len(ids))
}

// ToggleMarkAllReadButton shows the bulk read control when the group has
// at least one unread notification and hides it otherwise.
func (v *Model) ToggleMarkAllReadButton() {
	visible := v.showMarkAllRead && v.hasUnread()
	if visible == v.markAllReadVisible {
		return
	}
	v.markAllReadVisible = visible
	v.renderHeader()
}

// OnMarkAllReadButtonClick asks the controller to mark the whole list
// read. Local state only changes once the model reports it.
func (v *Model) OnMarkAllReadButtonClick() tea.Cmd {
	if v.controller == nil {
		return nil
	}
	return v.controller.MarkEntireListModelRead(v.model.Name())
}

func (v *Model) hasUnread() bool {
	for _, item := range v.model.Items() {
		if !item.IsRead() {
			return true
		}
	}
	return false
}

// ToggleTitle flips the visibility of the title.
func (v *Model) ToggleTitle() {
	v.SetTitleVisible(!v.showTitle)
}

// SetTitleVisible shows or hides the title. Nothing happens when the
// title is already in that state.
func (v *Model) SetTitleVisible(show bool) {
	if v.showTitle == show {
		return
	}
	v.showTitle = show
	v.renderHeader()
}

// ListWidget returns the sorted list of item widgets.
func (v *Model) ListWidget() *SortedListWidget { return v.listWidget }

// Timestamp returns the timestamp of the underlying list.
func (v *Model) Timestamp() time.Time { return v.model.Timestamp() }

// Source returns the source of the underlying list.
func (v *Model) Source() string { return v.model.Source() }

// ID returns the list's symbolic name. Hosts use it as the tie-break
// when ordering groups by timestamp.
func (v *Model) ID() string { return v.model.Name() }

// AllItemIDs returns the ids of every item in the group.
func (v *Model) AllItemIDs() []int64 { return v.model.AllItemIDs() }

// AllItemIDsByType returns the ids of the group's items of category t.
func (v *Model) AllItemIDsByType(t string) []int64 { return v.model.AllItemIDsByType(t) }

// IsForeign reports whether the group shows a remote wiki.
func (v *Model) IsForeign() bool { return v.model.IsForeign() }

// RenderedIDs returns the ids of the rendered widgets in display order.
func (v *Model) RenderedIDs() []int64 { return v.listWidget.IDs() }

// State returns the lifecycle state of the view.
func (v *Model) State() State { return v.state }

// IsTitleVisible reports whether the title is shown.
func (v *Model) IsTitleVisible() bool { return v.showTitle }

// IsMarkAllReadVisible reports whether the bulk read control is shown.
func (v *Model) IsMarkAllReadVisible() bool { return v.markAllReadVisible }

// Focus makes the group receive key presses.
func (v *Model) Focus() { v.focused = true }

// Blur stops the group from receiving key presses.
func (v *Model) Blur() { v.focused = false }

// Focused reports whether the group receives key presses.
func (v *Model) Focused() bool { return v.focused }

// SetSize sets the drawing area of the group.
func (v *Model) SetSize(width, height int) {
	v.width = width
	// the header takes one row
	v.listWidget.SetSize(width, max(1, height-1))
	v.renderHeader()
}

// Update handles key presses while the group is focused.
func (v *Model) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !v.focused {
		return nil
	}

	switch {
	case key.Matches(keyMsg, v.keys.Up):
		v.listWidget.CursorUp()

	case key.Matches(keyMsg, v.keys.Down):
		v.listWidget.CursorDown()

	case key.Matches(keyMsg, v.keys.ToggleRead):
		if w, ok := v.listWidget.Selected(); ok {
			return w.ToggleRead()
		}

	case key.Matches(keyMsg, v.keys.MarkAllRead):
		if v.markAllReadVisible {
			return v.OnMarkAllReadButtonClick()
		}

	case key.Matches(keyMsg, v.keys.Open):
		if w, ok := v.listWidget.Selected(); ok {
			w.Open()
		}

	case key.Matches(keyMsg, v.keys.Back):
		if v.inline != nil {
			v.inline.dismiss()
		}
	}

	return nil
}

// View renders the header, the list and any inline popup.
func (v *Model) View() string {
	parts := []string{}
	if v.header != "" {
		parts = append(parts, v.header)
	}

	if v.listWidget.Len() == 0 {
		parts = append(parts, theme.DimmedStyle.Render("  No notifications."))
	} else {
		parts = append(parts, v.listWidget.View())
	}

	if v.inline != nil {
		if popup := v.inline.view(v.width); popup != "" {
			parts = append(parts, popup)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader rebuilds the cached header row.
func (v *Model) renderHeader() {
	v.headerRenders += 1

	var title string
	if v.showTitle {
		label := v.titleLabel
		if label == "" {
			label = v.model.Source()
		}
		if v.titleHref != "" {
			title = theme.GroupLinkStyle.Render(label) + " " +
				theme.HelpStyle.Render(v.titleHref)
		} else {
			title = theme.GroupTitleStyle.Render(label)
		}
	}

	var button string
	if v.markAllReadVisible {
		button = theme.MarkAllReadStyle.Render("✓✓ Mark all as read")
	}

	switch {
	case title == "" && button == "":
		v.header = ""
	case button == "":
		v.header = title
	default:
		gap := v.width - lipgloss.Width(title) - lipgloss.Width(button)
		if gap < 1 {
			gap = 1
		}
		v.header = title + strings.Repeat(" ", gap) + button
	}
}
