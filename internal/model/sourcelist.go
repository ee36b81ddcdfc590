package model

import (
	"time"

	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/orderedlist"
)

// SourceListConfig describes the source a SourceListModel holds
// notifications for.
type SourceListConfig struct {
	// Name is the symbolic name of the list, used as its group id.
	Name string

	// Source is the key of the wiki the notifications come from.
	Source string

	// Title is the display label. Empty means no title.
	Title string

	// SourceURL is a link template with a "$1" page placeholder.
	// Empty means the source has no browsable URL.
	SourceURL string

	// Foreign is true for remote wikis.
	Foreign bool
}

// SourceListModel holds the notifications of one source and reports
// every change to its subscribers. It must only be used from one
// goroutine, the UI update loop.
type SourceListModel struct {
	cfg   SourceListConfig
	items *orderedlist.List[int64, *NotificationItem]

	subscribers []*subscriber
	nextSubID   int

	emitting bool
	batching bool
	pending  []*NotificationItem
}

type subscriber struct {
	id       int
	handlers ListHandlers
}

// NewSourceListModel creates an empty list model.
func NewSourceListModel(cfg SourceListConfig) *SourceListModel {
	if cfg.Name == "" {
		cfg.Name = cfg.Source
	}
	return &SourceListModel{
		cfg: cfg,
		items: orderedlist.New[int64, *NotificationItem](
			(*NotificationItem).ID,
			func(a, b *NotificationItem) int {
				switch {
				case a.id < b.id:
					return -1
				case a.id > b.id:
					return 1
				default:
					return 0
				}
			},
		),
	}
}

func (m *SourceListModel) Name() string      { return m.cfg.Name }
func (m *SourceListModel) Source() string    { return m.cfg.Source }
func (m *SourceListModel) Title() string     { return m.cfg.Title }
func (m *SourceListModel) SourceURL() string { return m.cfg.SourceURL }
func (m *SourceListModel) IsForeign() bool   { return m.cfg.Foreign }
func (m *SourceListModel) Len() int          { return m.items.Len() }

// Items returns the held items in storage order. The slice is a copy and
// is never nil.
func (m *SourceListModel) Items() []*NotificationItem {
	return m.items.Items()
}

// Item returns the held item with the given id.
func (m *SourceListModel) Item(id int64) (*NotificationItem, bool) {
	return m.items.Get(id)
}

// Timestamp returns the timestamp of the newest held item, or the zero
// time when the list is empty.
func (m *SourceListModel) Timestamp() time.Time {
	var latest time.Time
	for _, item := range m.items.Items() {
		if item.timestamp.After(latest) {
			latest = item.timestamp
		}
	}
	return latest
}

// HasUnread reports whether any held item is unread.
func (m *SourceListModel) HasUnread() bool {
	for _, item := range m.items.Items() {
		if !item.read {
			return true
		}
	}
	return false
}

// IsTalkRelated reports whether any held item is a talk page notification.
func (m *SourceListModel) IsTalkRelated() bool {
	for _, item := range m.items.Items() {
		if item.IsTalk() {
			return true
		}
	}
	return false
}

// AllItemIDs returns the ids of every held item.
func (m *SourceListModel) AllItemIDs() []int64 {
	return m.items.Keys()
}

// AllItemIDsByType returns the ids of held items with the given category.
func (m *SourceListModel) AllItemIDsByType(t string) []int64 {
	ids := []int64{}
	for _, item := range m.items.Items() {
		if item.category == t {
			ids = append(ids, item.id)
		}
	}
	return ids
}

// Subscribe registers handlers and returns a function that removes them.
func (m *SourceListModel) Subscribe(h ListHandlers) (unsubscribe func()) {
	m.nextSubID += 1
	id := m.nextSubID
	m.subscribers = append(m.subscribers, &subscriber{id: id, handlers: h})
	return func() {
		for i, s := range m.subscribers {
			if s.id == id {
				m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

// ApplyFullReset replaces every held item with items and emits one
// UpdateEvent. Items repeating an id already seen in the sequence are
// dropped.
func (m *SourceListModel) ApplyFullReset(items []*NotificationItem) {
	m.guard("ApplyFullReset")

	for _, old := range m.items.Items() {
		old.onChange = nil
	}

	kept := make([]*NotificationItem, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if seen[item.id] {
			glog.Warningf("[list][%s]dropping duplicate notification id = %d", m.cfg.Name, item.id)
			continue
		}
		seen[item.id] = true
		item.onChange = m.onItemChange
		kept = append(kept, item)
	}
	m.items.Replace(kept...)

	glog.V(2).Infof("[list][%s]reset items = %d", m.cfg.Name, len(kept))
	m.emit(UpdateEvent{Items: m.items.Items()})
}

// DiscardItems removes items and emits one DiscardEvent carrying exactly
// the items that were held. Nothing is emitted if none were held.
func (m *SourceListModel) DiscardItems(items []*NotificationItem) {
	m.guard("DiscardItems")

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.id)
	}
	removed := m.items.Remove(ids...)
	if len(removed) == 0 {
		return
	}
	for _, item := range removed {
		item.onChange = nil
	}

	glog.V(2).Infof("[list][%s]discard items = %d", m.cfg.Name, len(removed))
	m.emit(DiscardEvent{Items: removed})
}

// MarkRead sets the read flag on the held items with the given ids and
// emits a single ItemUpdateEvent for all of them. It returns the items
// whose flag changed.
func (m *SourceListModel) MarkRead(ids []int64, read bool) []*NotificationItem {
	m.guard("MarkRead")

	m.batching = true
	for _, id := range ids {
		if item, ok := m.items.Get(id); ok {
			item.ToggleRead(read)
		}
	}
	m.batching = false

	changed := m.pending
	m.pending = nil
	if 0 < len(changed) {
		m.emit(ItemUpdateEvent{Items: changed})
	}
	return changed
}

// MarkAllSeen sets the seen flag on every held item, emitting at most one
// ItemUpdateEvent.
func (m *SourceListModel) MarkAllSeen() {
	m.guard("MarkAllSeen")

	m.batching = true
	for _, item := range m.items.Items() {
		item.ToggleSeen(true)
	}
	m.batching = false

	changed := m.pending
	m.pending = nil
	if 0 < len(changed) {
		m.emit(ItemUpdateEvent{Items: changed})
	}
}

func (m *SourceListModel) onItemChange(item *NotificationItem) {
	if m.batching {
		m.pending = append(m.pending, item)
		return
	}
	m.guard("item update")
	m.emit(ItemUpdateEvent{Items: []*NotificationItem{item}})
}

// guard panics when a subscriber mutates the model while an event from
// it is being delivered.
func (m *SourceListModel) guard(op string) {
	if m.emitting {
		panic("model: " + op + " called on list " + m.cfg.Name + " while it is emitting an event")
	}
}

func (m *SourceListModel) emit(e ListEvent) {
	m.emitting = true
	defer func() {
		m.emitting = false
	}()
	// copy so handlers may unsubscribe during delivery
	subscribers := append([]*subscriber(nil), m.subscribers...)
	for _, s := range subscribers {
		s.handlers.dispatch(e)
	}
}
