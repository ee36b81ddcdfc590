// Package controller owns the list models of one badge. Transport calls
// run as tea.Cmd functions; their results come back as messages and are
// applied to the models on the update loop.
package controller

import (
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

// requestTimeout bounds a single transport call.
const requestTimeout = 30 * time.Second

// FetchedMsg carries the notifications fetched from one source.
type FetchedMsg struct {
	Badge  model.BadgeType
	Source string
	Items  []model.ItemData
	Err    error
}

// MarkReadResultMsg reports the outcome of a read-state change. All is
// set when the whole list was marked read.
type MarkReadResultMsg struct {
	Badge  model.BadgeType
	Source string
	IDs    []int64
	Read   bool
	All    bool
	Err    error
}

// MarkSeenResultMsg reports the outcome of persisting the seen state of
// one source.
type MarkSeenResultMsg struct {
	Badge  model.BadgeType
	Source string
	Err    error
}

// Controller holds the sources and list models shown under one badge.
type Controller struct {
	badge   model.BadgeType
	order   []string
	sources map[string]source.Source
	models  map[string]*model.SourceListModel
}

// New creates a controller for badge.
func New(badge model.BadgeType) *Controller {
	return &Controller{
		badge:   badge,
		sources: map[string]source.Source{},
		models:  map[string]*model.SourceListModel{},
	}
}

// Badge returns the badge the controller serves.
func (c *Controller) Badge() model.BadgeType { return c.badge }

// Register adds a source. Registering a name again replaces the
// transport and keeps the existing list model.
func (c *Controller) Register(src source.Source) {
	name := src.Info().Name
	if _, ok := c.sources[name]; !ok {
		c.order = append(c.order, name)
	}
	c.sources[name] = src
	glog.V(1).Infof("[controller][%s]registered %s", c.badge, name)
}

// Unregister removes source name and its list model. The removed model
// is returned so its views can be closed.
func (c *Controller) Unregister(name string) (*model.SourceListModel, bool) {
	if _, ok := c.sources[name]; !ok {
		return nil, false
	}
	delete(c.sources, name)
	c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == name })

	m, ok := c.models[name]
	delete(c.models, name)
	glog.V(1).Infof("[controller][%s]unregistered %s", c.badge, name)
	return m, ok
}

// Sources returns the registered source names in registration order.
func (c *Controller) Sources() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Model returns the list model of source name once its first fetch has
// been applied.
func (c *Controller) Model(name string) (*model.SourceListModel, bool) {
	m, ok := c.models[name]
	return m, ok
}

// Models returns every list model in registration order.
func (c *Controller) Models() []*model.SourceListModel {
	out := make([]*model.SourceListModel, 0, len(c.models))
	for _, name := range c.order {
		if m, ok := c.models[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

// FetchAll returns a command fetching every registered source.
func (c *Controller) FetchAll() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(c.order))
	for _, name := range c.order {
		cmds = append(cmds, c.Fetch(name))
	}
	return tea.Batch(cmds...)
}

// Fetch returns a command fetching source name.
func (c *Controller) Fetch(name string) tea.Cmd {
	src, ok := c.sources[name]
	if !ok {
		return nil
	}
	badge := c.badge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := src.Fetch(ctx, badge)
		return FetchedMsg{Badge: badge, Source: name, Items: items, Err: err}
	}
}

// ApplyFetch resets the list model of the fetched source, creating it on
// first use. Notifications already seen stay seen. It returns the model
// when it was just created.
func (c *Controller) ApplyFetch(msg FetchedMsg) (*model.SourceListModel, error) {
	if msg.Err != nil {
		glog.Warningf("[controller][%s]fetch %s failed: %s", c.badge, msg.Source, msg.Err)
		return nil, msg.Err
	}
	src, ok := c.sources[msg.Source]
	if !ok {
		// removed while the fetch was in flight
		glog.V(1).Infof("[controller][%s]dropping fetch of %s", c.badge, msg.Source)
		return nil, nil
	}

	var created *model.SourceListModel
	m, ok := c.models[msg.Source]
	if !ok {
		m = model.NewSourceListModel(src.Info().ListConfig())
		c.models[msg.Source] = m
		created = m
	}

	items := make([]*model.NotificationItem, 0, len(msg.Items))
	for _, d := range msg.Items {
		if held, ok := m.Item(d.ID); ok && held.IsSeen() {
			d.Seen = true
		}
		items = append(items, model.NewNotificationItem(d))
	}
	m.ApplyFullReset(items)

	return created, nil
}

// MarkItemsRead returns a command setting the read state of ids on
// source name. The list model changes once the result is applied.
func (c *Controller) MarkItemsRead(name string, ids []int64, read bool) tea.Cmd {
	src, ok := c.sources[name]
	if !ok || len(ids) == 0 {
		return nil
	}
	badge := c.badge
	ids = append([]int64(nil), ids...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := src.MarkRead(ctx, ids, read)
		return MarkReadResultMsg{Badge: badge, Source: name, IDs: ids, Read: read, Err: err}
	}
}

// MarkEntireListModelRead returns a command marking every notification
// of source name read.
func (c *Controller) MarkEntireListModelRead(name string) tea.Cmd {
	src, ok := c.sources[name]
	if !ok {
		return nil
	}
	var ids []int64
	if m, ok := c.models[name]; ok {
		ids = m.AllItemIDs()
	}
	badge := c.badge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := src.MarkAllRead(ctx, badge)
		return MarkReadResultMsg{Badge: badge, Source: name, IDs: ids, Read: true, All: true, Err: err}
	}
}

// MarkAllRead returns a command marking every list with unread
// notifications read.
func (c *Controller) MarkAllRead() tea.Cmd {
	var cmds []tea.Cmd
	for _, m := range c.Models() {
		if m.HasUnread() {
			cmds = append(cmds, c.MarkEntireListModelRead(m.Name()))
		}
	}
	return tea.Batch(cmds...)
}

// ApplyMarkRead applies a read-state change to its list model in one
// batch. Only the ids captured with the request change, so notifications
// fetched while it was in flight keep their state. Foreign lists drop
// notifications once they are read.
func (c *Controller) ApplyMarkRead(msg MarkReadResultMsg) error {
	if msg.Err != nil {
		glog.Warningf("[controller][%s]mark read on %s failed: %s", c.badge, msg.Source, msg.Err)
		return msg.Err
	}
	m, ok := c.models[msg.Source]
	if !ok {
		return nil
	}

	ids := msg.IDs
	m.MarkRead(ids, msg.Read)

	if msg.Read && m.IsForeign() {
		var read []*model.NotificationItem
		for _, id := range ids {
			if item, ok := m.Item(id); ok && item.IsRead() {
				read = append(read, item)
			}
		}
		m.DiscardItems(read)
	}

	return nil
}

// MarkAllSeen sets the seen flag on every notification of every list and
// returns a command persisting it for the lists that had unseen ones.
func (c *Controller) MarkAllSeen() tea.Cmd {
	var cmds []tea.Cmd
	for _, m := range c.Models() {
		if !hasUnseen(m) {
			continue
		}
		m.MarkAllSeen()
		cmds = append(cmds, c.markSeen(m.Name()))
	}
	return tea.Batch(cmds...)
}

func (c *Controller) markSeen(name string) tea.Cmd {
	src, ok := c.sources[name]
	if !ok {
		return nil
	}
	badge := c.badge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := src.MarkSeen(ctx, badge)
		if err != nil {
			glog.Warningf("[controller][%s]mark seen on %s failed: %s", badge, name, err)
		}
		return MarkSeenResultMsg{Badge: badge, Source: name, Err: err}
	}
}

func hasUnseen(m *model.SourceListModel) bool {
	for _, item := range m.Items() {
		if !item.IsSeen() {
			return true
		}
	}
	return false
}

// NumItems returns the number of notifications across all lists.
func (c *Controller) NumItems() int {
	n := 0
	for _, m := range c.models {
		n += m.Len()
	}
	return n
}

// UnreadCount returns the number of unread notifications across all lists.
func (c *Controller) UnreadCount() int {
	n := 0
	for _, m := range c.models {
		for _, item := range m.Items() {
			if !item.IsRead() {
				n += 1
			}
		}
	}
	return n
}

// HasUnseen reports whether any notification has not been seen.
func (c *Controller) HasUnseen() bool {
	for _, m := range c.models {
		if hasUnseen(m) {
			return true
		}
	}
	return false
}

// HasUnreadTalk reports whether an unread talk page notification is left.
func (c *Controller) HasUnreadTalk() bool {
	for _, m := range c.models {
		for _, item := range m.Items() {
			if item.IsTalk() && !item.IsRead() {
				return true
			}
		}
	}
	return false
}
