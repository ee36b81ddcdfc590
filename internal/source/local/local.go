// Package local serves notifications out of the SQLite store. With an
// upstream it acts as a read-through cache that keeps working from the
// last good copy while the upstream is unreachable.
package local

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/store"
)

// fetchLimit caps the notifications served per badge.
const fetchLimit = 100

// Source implements source.Source on top of a store.Store.
type Source struct {
	store    store.Store
	info     source.Info
	upstream source.Source
}

// New creates a source for info. upstream may be nil, in which case the
// store is the only copy of the notifications.
func New(s store.Store, info source.Info, upstream source.Source) *Source {
	return &Source{
		store:    s,
		info:     info,
		upstream: upstream,
	}
}

// Info describes the wiki.
func (s *Source) Info() source.Info {
	return s.info
}

// Fetch refreshes the cache from the upstream when there is one and
// returns the stored notifications of badge, newest first. Authentication
// failures are returned; other upstream failures fall back to the cache.
func (s *Source) Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error) {
	if s.upstream != nil {
		items, err := s.upstream.Fetch(ctx, badge)
		switch {
		case source.IsAuthError(err):
			return nil, err
		case err != nil:
			glog.Warningf("[local][%s]upstream fetch failed, serving cache: %s", s.info.Name, err)
		default:
			if err := s.store.UpsertNotifications(ctx, s.normalize(items, badge)); err != nil {
				return nil, fmt.Errorf("caching notifications of %s: %w", s.info.Name, err)
			}
		}
	}

	items, err := s.store.GetNotifications(ctx, store.NotificationFilter{
		Source: s.info.Name,
		Badge:  badge,
		Limit:  fetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("loading notifications of %s: %w", s.info.Name, err)
	}
	return items, nil
}

// MarkRead sets the read state upstream first, then in the store.
func (s *Source) MarkRead(ctx context.Context, ids []int64, read bool) error {
	if s.upstream != nil {
		if err := s.upstream.MarkRead(ctx, ids, read); err != nil {
			return err
		}
	}
	if err := s.store.MarkNotificationsRead(ctx, s.info.Name, ids, read); err != nil {
		glog.Errorf("[local][%s]mark read failed: %s", s.info.Name, err)
		return err
	}
	return nil
}

// MarkAllRead marks every notification of badge read upstream first,
// then in the store.
func (s *Source) MarkAllRead(ctx context.Context, badge model.BadgeType) error {
	if s.upstream != nil {
		if err := s.upstream.MarkAllRead(ctx, badge); err != nil {
			return err
		}
	}
	ids, err := s.store.MarkAllNotificationsRead(ctx, s.info.Name, badge)
	if err != nil {
		glog.Errorf("[local][%s]mark all read failed: %s", s.info.Name, err)
		return err
	}
	glog.V(2).Infof("[local][%s]marked %d %s notifications read", s.info.Name, len(ids), badge)
	return nil
}

// MarkSeen marks the notifications of badge seen upstream first, then in
// the store.
func (s *Source) MarkSeen(ctx context.Context, badge model.BadgeType) error {
	if s.upstream != nil {
		if err := s.upstream.MarkSeen(ctx, badge); err != nil {
			return err
		}
	}
	if err := s.store.MarkNotificationsSeen(ctx, s.info.Name, badge); err != nil {
		glog.Errorf("[local][%s]mark seen failed: %s", s.info.Name, err)
		return err
	}
	return nil
}

// normalize pins items to this source and badge before they are cached.
func (s *Source) normalize(items []model.ItemData, badge model.BadgeType) []model.ItemData {
	out := make([]model.ItemData, len(items))
	for i, item := range items {
		item.Source = s.info.Name
		item.Badge = badge
		item.Foreign = s.info.Foreign
		out[i] = item
	}
	return out
}
