package local_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/source/local"
	"github.com/nhle/notification-center/internal/store"
	"github.com/nhle/notification-center/tests/testutil"
)

type fakeUpstream struct {
	items      []model.ItemData
	fetchErr   error
	markErr    error
	markedIDs  []int64
	markedAll  []model.BadgeType
	markedSeen []model.BadgeType
}

func (f *fakeUpstream) Info() source.Info { return source.Info{Name: "upstream"} }

func (f *fakeUpstream) Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error) {
	return f.items, f.fetchErr
}

func (f *fakeUpstream) MarkRead(ctx context.Context, ids []int64, read bool) error {
	f.markedIDs = append(f.markedIDs, ids...)
	return f.markErr
}

func (f *fakeUpstream) MarkAllRead(ctx context.Context, badge model.BadgeType) error {
	f.markedAll = append(f.markedAll, badge)
	return f.markErr
}

func (f *fakeUpstream) MarkSeen(ctx context.Context, badge model.BadgeType) error {
	f.markedSeen = append(f.markedSeen, badge)
	return f.markErr
}

var ts = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func TestFetchFromStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	err := s.UpsertNotifications(ctx, []model.ItemData{
		{ID: 1, Source: "enwiki", Badge: model.BadgeAlert, Timestamp: ts},
		{ID: 2, Source: "enwiki", Badge: model.BadgeMessage, Timestamp: ts},
		{ID: 3, Source: "dewiki", Badge: model.BadgeAlert, Timestamp: ts},
	})
	assert.Equal(t, err, nil)

	src := local.New(s, source.Info{Name: "enwiki"}, nil)
	items, err := src.Fetch(ctx, model.BadgeAlert)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].ID, int64(1))
}

func TestFetchCachesUpstream(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	up := &fakeUpstream{items: []model.ItemData{{ID: 9, Timestamp: ts, Content: model.Content{Header: "x"}}}}

	src := local.New(s, source.Info{Name: "commons", Foreign: true}, up)
	items, err := src.Fetch(ctx, model.BadgeMessage)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].Source, "commons")
	assert.Equal(t, items[0].Badge, model.BadgeMessage)
	assert.Equal(t, items[0].Foreign, true)

	// upstream down: the cached copy is served
	up.fetchErr = errors.New("connection refused")
	items, err = src.Fetch(ctx, model.BadgeMessage)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(items), 1)

	// auth failures are not hidden
	up.fetchErr = &source.AuthError{Source: "commons", Message: "expired"}
	_, err = src.Fetch(ctx, model.BadgeMessage)
	assert.Equal(t, source.IsAuthError(err), true)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	up := &fakeUpstream{items: []model.ItemData{{ID: 1, Timestamp: ts}, {ID: 2, Timestamp: ts}}}
	src := local.New(s, source.Info{Name: "enwiki"}, up)

	_, err := src.Fetch(ctx, model.BadgeAlert)
	assert.Equal(t, err, nil)

	assert.Equal(t, src.MarkRead(ctx, []int64{1}, true), nil)
	assert.Equal(t, up.markedIDs, []int64{1})

	count, err := s.GetUnreadCount(ctx, "enwiki", model.BadgeAlert)
	assert.Equal(t, err, nil)
	assert.Equal(t, count, 1)

	// the store is left alone when upstream refuses
	up.markErr = errors.New("boom")
	assert.NotEqual(t, src.MarkRead(ctx, []int64{2}, true), nil)
	count, err = s.GetUnreadCount(ctx, "enwiki", model.BadgeAlert)
	assert.Equal(t, err, nil)
	assert.Equal(t, count, 1)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	err := s.UpsertNotifications(ctx, []model.ItemData{
		{ID: 1, Source: "enwiki", Badge: model.BadgeAlert, Timestamp: ts},
		{ID: 2, Source: "enwiki", Badge: model.BadgeAlert, Timestamp: ts},
		{ID: 3, Source: "enwiki", Badge: model.BadgeMessage, Timestamp: ts},
	})
	assert.Equal(t, err, nil)

	src := local.New(s, source.Info{Name: "enwiki"}, nil)
	assert.Equal(t, src.MarkAllRead(ctx, model.BadgeAlert), nil)

	unread, err := s.GetNotifications(ctx, store.NotificationFilter{Source: "enwiki", UnreadOnly: true})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(unread), 1)
	assert.Equal(t, unread[0].ID, int64(3))

	marks, err := s.GetReadMarks(ctx, "enwiki")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(marks), 2)
}

func TestMarkSeen(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	up := &fakeUpstream{items: []model.ItemData{{ID: 1, Timestamp: ts}}}
	src := local.New(s, source.Info{Name: "enwiki"}, up)

	items, err := src.Fetch(ctx, model.BadgeAlert)
	assert.Equal(t, err, nil)
	assert.Equal(t, items[0].Seen, false)

	assert.Equal(t, src.MarkSeen(ctx, model.BadgeAlert), nil)
	assert.Equal(t, up.markedSeen, []model.BadgeType{model.BadgeAlert})

	// a stale upstream copy does not undo it
	items, err = src.Fetch(ctx, model.BadgeAlert)
	assert.Equal(t, err, nil)
	assert.Equal(t, items[0].Seen, true)

	up.markErr = errors.New("boom")
	assert.NotEqual(t, src.MarkSeen(ctx, model.BadgeAlert), nil)
}
