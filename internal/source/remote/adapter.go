package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

// Adapter implements source.Source for a wiki reachable over HTTP.
type Adapter struct {
	client *Client
	info   source.Info
}

// NewAdapter creates a source for the wiki described by info whose API
// is rooted at apiURL.
func NewAdapter(info source.Info, apiURL, token string) *Adapter {
	return &Adapter{
		client: NewClient(info.Name, apiURL, token),
		info:   info,
	}
}

// Info describes the wiki.
func (a *Adapter) Info() source.Info {
	return a.info
}

// Fetch retrieves the notifications shown under badge.
func (a *Adapter) Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error) {
	var resp ListResponse
	path := "/notifications?type=" + url.QueryEscape(string(badge))
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s notifications of %s: %w", badge, a.info.Name, err)
	}

	items := make([]model.ItemData, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		items = append(items, a.toItemData(n, badge))
	}
	return items, nil
}

// MarkRead sets the read state of the given notifications.
func (a *Adapter) MarkRead(ctx context.Context, ids []int64, read bool) error {
	if len(ids) == 0 {
		return nil
	}
	err := a.client.Post(ctx, "/notifications/read", MarkReadRequest{IDs: ids, Read: read}, nil)
	if err != nil {
		return fmt.Errorf("marking notifications of %s: %w", a.info.Name, err)
	}
	return nil
}

// MarkAllRead marks every notification shown under badge as read.
func (a *Adapter) MarkAllRead(ctx context.Context, badge model.BadgeType) error {
	err := a.client.Post(ctx, "/notifications/read-all", MarkAllReadRequest{Type: string(badge)}, nil)
	if err != nil {
		return fmt.Errorf("marking all %s notifications of %s: %w", badge, a.info.Name, err)
	}
	return nil
}

// MarkSeen marks every notification shown under badge as seen.
func (a *Adapter) MarkSeen(ctx context.Context, badge model.BadgeType) error {
	err := a.client.Post(ctx, "/notifications/seen", MarkSeenRequest{Type: string(badge)}, nil)
	if err != nil {
		return fmt.Errorf("marking %s notifications of %s seen: %w", badge, a.info.Name, err)
	}
	return nil
}

func (a *Adapter) toItemData(n Notification, badge model.BadgeType) model.ItemData {
	return model.ItemData{
		ID:        n.ID,
		Source:    a.info.Name,
		Type:      n.Category,
		Badge:     badge,
		Timestamp: n.Timestamp,
		Read:      n.Read,
		Seen:      n.Seen,
		Bundled:   n.Bundled,
		Foreign:   a.info.Foreign,
		Content:   model.Content{Header: n.Header, Body: n.Body},
		URL:       n.URL,
	}
}
