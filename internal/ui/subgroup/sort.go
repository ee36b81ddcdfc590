package subgroup

import "github.com/nhle/notification-center/internal/model"

// Compare orders notifications newest first. Items with the same
// timestamp fall back on id, larger id first, so the order never depends
// on insertion order.
func Compare(a, b *model.NotificationItem) int {
	if c := b.Timestamp().Compare(a.Timestamp()); c != 0 {
		return c
	}
	switch {
	case a.ID() < b.ID():
		return 1
	case a.ID() > b.ID():
		return -1
	default:
		return 0
	}
}

func compareWidgets(a, b *ItemWidget) int {
	return Compare(a.item, b.item)
}
