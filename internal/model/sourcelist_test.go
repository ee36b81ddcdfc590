package model

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

var baseTime = time.Date(2016, time.March, 1, 12, 0, 0, 0, time.UTC)

func newItem(id int64, offset int, read bool) *NotificationItem {
	return NewNotificationItem(ItemData{
		ID:        id,
		Source:    "local",
		Timestamp: baseTime.Add(time.Duration(offset) * time.Second),
		Read:      read,
	})
}

type recorder struct {
	updates     [][]*NotificationItem
	discards    [][]*NotificationItem
	itemUpdates [][]*NotificationItem
}

func (r *recorder) handlers() ListHandlers {
	return ListHandlers{
		OnUpdate:     func(items []*NotificationItem) { r.updates = append(r.updates, items) },
		OnDiscard:    func(items []*NotificationItem) { r.discards = append(r.discards, items) },
		OnItemUpdate: func(items []*NotificationItem) { r.itemUpdates = append(r.itemUpdates, items) },
	}
}

func ids(items []*NotificationItem) []int64 {
	out := []int64{}
	for _, item := range items {
		out = append(out, item.ID())
	}
	return out
}

func TestApplyFullResetEmitsUpdate(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	r := &recorder{}
	m.Subscribe(r.handlers())

	m.ApplyFullReset([]*NotificationItem{newItem(3, 0, false), newItem(1, 5, true)})

	assert.Equal(t, "local", m.Name())
	assert.Equal(t, 1, len(r.updates))
	assert.Equal(t, []int64{1, 3}, ids(r.updates[0]))
	assert.Equal(t, []int64{1, 3}, m.AllItemIDs())
	assert.Equal(t, baseTime.Add(5*time.Second), m.Timestamp())
	assert.Equal(t, true, m.HasUnread())
}

func TestApplyFullResetDropsDuplicateIDs(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	first := newItem(4, 0, false)
	m.ApplyFullReset([]*NotificationItem{first, newItem(4, 10, true), newItem(2, 0, true)})

	assert.Equal(t, 2, m.Len())
	held, ok := m.Item(4)
	assert.Equal(t, true, ok)
	assert.Equal(t, true, held == first)
}

func TestApplyFullResetEmptyClears(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	r := &recorder{}
	m.Subscribe(r.handlers())

	m.ApplyFullReset([]*NotificationItem{newItem(1, 0, false)})
	m.ApplyFullReset(nil)

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 2, len(r.updates))
	assert.Equal(t, true, r.updates[1] != nil)
	assert.Equal(t, 0, len(r.updates[1]))
	assert.Equal(t, true, m.Timestamp().IsZero())
}

func TestDiscardItemsEmitsOnlyRemoved(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	a, b, c := newItem(1, 0, false), newItem(2, 0, false), newItem(3, 0, false)
	m.ApplyFullReset([]*NotificationItem{a, b, c})

	r := &recorder{}
	m.Subscribe(r.handlers())

	m.DiscardItems([]*NotificationItem{b, newItem(99, 0, false)})
	assert.Equal(t, 1, len(r.discards))
	assert.Equal(t, []int64{2}, ids(r.discards[0]))
	assert.Equal(t, []int64{1, 3}, m.AllItemIDs())

	// discarding an item no longer held emits nothing
	m.DiscardItems([]*NotificationItem{b})
	assert.Equal(t, 1, len(r.discards))
	assert.Equal(t, 0, len(r.updates))

	// a discarded item no longer reports to the list
	b.ToggleRead(true)
	assert.Equal(t, 0, len(r.itemUpdates))
}

func TestItemToggleReadAggregates(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	a := newItem(1, 0, false)
	m.ApplyFullReset([]*NotificationItem{a})

	r := &recorder{}
	m.Subscribe(r.handlers())

	assert.Equal(t, true, a.ToggleRead(true))
	assert.Equal(t, false, a.ToggleRead(true))
	assert.Equal(t, 1, len(r.itemUpdates))
	assert.Equal(t, false, m.HasUnread())
}

func TestMarkReadCoalesces(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	m.ApplyFullReset([]*NotificationItem{
		newItem(5, 100, false),
		newItem(7, 100, false),
		newItem(2, 50, true),
	})

	r := &recorder{}
	m.Subscribe(r.handlers())

	unreadDuringEvent := true
	m.Subscribe(ListHandlers{
		OnItemUpdate: func([]*NotificationItem) { unreadDuringEvent = m.HasUnread() },
	})

	changed := m.MarkRead([]int64{5, 7, 2, 404}, true)
	assert.Equal(t, []int64{5, 7}, ids(changed))
	assert.Equal(t, 1, len(r.itemUpdates))
	assert.Equal(t, []int64{5, 7}, ids(r.itemUpdates[0]))
	assert.Equal(t, false, unreadDuringEvent)

	// nothing changes, nothing is emitted
	m.MarkRead([]int64{5}, true)
	assert.Equal(t, 1, len(r.itemUpdates))
}

func TestMarkAllSeen(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	m.ApplyFullReset([]*NotificationItem{newItem(1, 0, false), newItem(2, 0, false)})

	r := &recorder{}
	m.Subscribe(r.handlers())

	m.MarkAllSeen()
	m.MarkAllSeen()
	assert.Equal(t, 1, len(r.itemUpdates))
	assert.Equal(t, 2, len(r.itemUpdates[0]))
}

func TestAllItemIDsByTypeAndTalk(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	talk := NewNotificationItem(ItemData{ID: 8, Type: CategoryTalk, Timestamp: baseTime})
	m.ApplyFullReset([]*NotificationItem{newItem(1, 0, false), talk})

	assert.Equal(t, []int64{8}, m.AllItemIDsByType(CategoryTalk))
	assert.Equal(t, []int64{}, m.AllItemIDsByType("mention"))
	assert.Equal(t, true, m.IsTalkRelated())
}

func TestUnsubscribe(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	r := &recorder{}
	unsubscribe := m.Subscribe(r.handlers())
	unsubscribe()

	m.ApplyFullReset([]*NotificationItem{newItem(1, 0, false)})
	assert.Equal(t, 0, len(r.updates))
}

func TestReentrantMutationPanics(t *testing.T) {
	m := NewSourceListModel(SourceListConfig{Source: "local"})
	m.Subscribe(ListHandlers{
		OnUpdate: func(items []*NotificationItem) {
			m.DiscardItems(items)
		},
	})

	panicked := false
	func() {
		defer func() {
			if recover() != nil {
				panicked = true
			}
		}()
		m.ApplyFullReset([]*NotificationItem{newItem(1, 0, false)})
	}()
	assert.Equal(t, true, panicked)

	// the guard resets after the panic unwinds
	m.DiscardItems(m.Items())
	assert.Equal(t, 0, m.Len())
}
