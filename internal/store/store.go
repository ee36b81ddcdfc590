package store

import (
	"context"

	"github.com/nhle/notification-center/internal/model"
)

// NotificationFilter controls filtering and pagination for notification
// queries. Results are ordered newest first.
type NotificationFilter struct {
	Source     string          // source name or "" (all)
	Badge      model.BadgeType // badge or "" (all)
	UnreadOnly bool
	Limit      int
}

// Store defines the persistence interface for wiki sources, cached
// notifications and the audit trail of read-state changes.
type Store interface {
	// === Sources ===

	UpsertSource(ctx context.Context, src model.SourceConfig) error
	GetSources(ctx context.Context) ([]model.SourceConfig, error)
	DeleteSource(ctx context.Context, name string) error

	// === Notifications ===

	UpsertNotifications(ctx context.Context, items []model.ItemData) error
	GetNotifications(ctx context.Context, filter NotificationFilter) ([]model.ItemData, error)
	GetUnreadCount(ctx context.Context, source string, badge model.BadgeType) (int, error)
	MarkNotificationsRead(ctx context.Context, source string, ids []int64, read bool) error
	MarkAllNotificationsRead(ctx context.Context, source string, badge model.BadgeType) ([]int64, error)
	MarkNotificationsSeen(ctx context.Context, source string, badge model.BadgeType) error

	// === Read marks ===

	GetReadMarks(ctx context.Context, source string) ([]model.ReadMark, error)
}
