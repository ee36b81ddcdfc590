package model

// ListEvent is one signal emitted by a SourceListModel. The concrete
// types are UpdateEvent, DiscardEvent and ItemUpdateEvent.
type ListEvent interface {
	listEvent()
}

// UpdateEvent reports that the whole collection was replaced.
type UpdateEvent struct {
	Items []*NotificationItem
}

// DiscardEvent reports items that were truly removed, e.g. read
// cross-wiki notifications. Internal re-sorting never produces one.
type DiscardEvent struct {
	Items []*NotificationItem
}

// ItemUpdateEvent aggregates state changes of held items. A batch
// mutation produces a single event listing every changed item.
type ItemUpdateEvent struct {
	Items []*NotificationItem
}

func (UpdateEvent) listEvent()     {}
func (DiscardEvent) listEvent()    {}
func (ItemUpdateEvent) listEvent() {}

// ListHandlers are the callbacks a subscriber registers with a
// SourceListModel. Nil fields are skipped.
type ListHandlers struct {
	OnUpdate     func(items []*NotificationItem)
	OnDiscard    func(items []*NotificationItem)
	OnItemUpdate func(items []*NotificationItem)
}

func (h ListHandlers) dispatch(e ListEvent) {
	switch e := e.(type) {
	case UpdateEvent:
		if h.OnUpdate != nil {
			h.OnUpdate(e.Items)
		}
	case DiscardEvent:
		if h.OnDiscard != nil {
			h.OnDiscard(e.Items)
		}
	case ItemUpdateEvent:
		if h.OnItemUpdate != nil {
			h.OnItemUpdate(e.Items)
		}
	}
}
