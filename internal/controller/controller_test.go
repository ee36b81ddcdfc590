package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/assert/v2"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

type fakeSource struct {
	info       source.Info
	items      []model.ItemData
	err        error
	marked     []int64
	markedAll  []model.BadgeType
	markedSeen []model.BadgeType
}

func (f *fakeSource) Info() source.Info { return f.info }

func (f *fakeSource) Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error) {
	return f.items, f.err
}

func (f *fakeSource) MarkRead(ctx context.Context, ids []int64, read bool) error {
	f.marked = append(f.marked, ids...)
	return f.err
}

func (f *fakeSource) MarkAllRead(ctx context.Context, badge model.BadgeType) error {
	f.markedAll = append(f.markedAll, badge)
	return f.err
}

func (f *fakeSource) MarkSeen(ctx context.Context, badge model.BadgeType) error {
	f.markedSeen = append(f.markedSeen, badge)
	return f.err
}

// run executes cmd and every command it batches, collecting the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

var base = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func data(source string, id int64, read bool, category string) model.ItemData {
	return model.ItemData{
		ID:        id,
		Source:    source,
		Type:      category,
		Timestamp: base.Add(time.Duration(id) * time.Minute),
		Read:      read,
	}
}

func fetched(t *testing.T, c *Controller) {
	t.Helper()
	for _, msg := range run(c.FetchAll()) {
		_, err := c.ApplyFetch(msg.(FetchedMsg))
		assert.Equal(t, err, nil)
	}
}

func TestFetchCreatesModels(t *testing.T) {
	c := New(model.BadgeAlert)
	c.Register(&fakeSource{
		info:  source.Info{Name: "enwiki", Title: "Wikipedia"},
		items: []model.ItemData{data("enwiki", 1, false, "mention"), data("enwiki", 2, true, "mention")},
	})
	c.Register(&fakeSource{
		info:  source.Info{Name: "commons", Foreign: true},
		items: []model.ItemData{data("commons", 3, false, "mention")},
	})

	msgs := run(c.FetchAll())
	assert.Equal(t, len(msgs), 2)

	for _, msg := range msgs {
		fm := msg.(FetchedMsg)
		assert.Equal(t, fm.Badge, model.BadgeAlert)
		created, err := c.ApplyFetch(fm)
		assert.Equal(t, err, nil)
		assert.Equal(t, created != nil, true)
	}

	assert.Equal(t, c.Sources(), []string{"enwiki", "commons"})
	assert.Equal(t, len(c.Models()), 2)
	assert.Equal(t, c.Models()[0].Name(), "enwiki")
	assert.Equal(t, c.Models()[1].IsForeign(), true)
	assert.Equal(t, c.NumItems(), 3)
	assert.Equal(t, c.UnreadCount(), 2)

	// a second fetch reuses the model
	for _, msg := range run(c.Fetch("enwiki")) {
		created, err := c.ApplyFetch(msg.(FetchedMsg))
		assert.Equal(t, err, nil)
		assert.Equal(t, created == nil, true)
	}
}

func TestFetchError(t *testing.T) {
	c := New(model.BadgeAlert)
	c.Register(&fakeSource{info: source.Info{Name: "enwiki"}, err: errors.New("down")})

	msgs := run(c.FetchAll())
	_, err := c.ApplyFetch(msgs[0].(FetchedMsg))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, len(c.Models()), 0)

	_, err = c.ApplyFetch(FetchedMsg{Source: "nowhere"})
	assert.NotEqual(t, err, nil)

	assert.Equal(t, c.Fetch("nowhere") == nil, true)
}

func TestMarkItemsRead(t *testing.T) {
	src := &fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data("enwiki", 1, false, "mention"), data("enwiki", 2, false, "mention")},
	}
	c := New(model.BadgeAlert)
	c.Register(src)
	fetched(t, c)

	m, _ := c.Model("enwiki")
	var events int
	m.Subscribe(model.ListHandlers{OnItemUpdate: func([]*model.NotificationItem) { events += 1 }})

	cmd := c.MarkItemsRead("enwiki", []int64{1, 2}, true)
	// nothing changes before the result is applied
	assert.Equal(t, c.UnreadCount(), 2)

	msgs := run(cmd)
	assert.Equal(t, src.marked, []int64{1, 2})

	assert.Equal(t, c.ApplyMarkRead(msgs[0].(MarkReadResultMsg)), nil)
	assert.Equal(t, c.UnreadCount(), 0)
	assert.Equal(t, events, 1)

	assert.Equal(t, c.MarkItemsRead("enwiki", nil, true) == nil, true)
	assert.Equal(t, c.MarkItemsRead("nowhere", []int64{1}, true) == nil, true)
}

func TestMarkReadFailureLeavesModel(t *testing.T) {
	src := &fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data("enwiki", 1, false, "mention")},
	}
	c := New(model.BadgeAlert)
	c.Register(src)
	fetched(t, c)

	src.err = errors.New("denied")
	msgs := run(c.MarkItemsRead("enwiki", []int64{1}, true))
	assert.NotEqual(t, c.ApplyMarkRead(msgs[0].(MarkReadResultMsg)), nil)
	assert.Equal(t, c.UnreadCount(), 1)
}

func TestForeignDiscardsReadItems(t *testing.T) {
	src := &fakeSource{
		info: source.Info{Name: "commons", Foreign: true},
		items: []model.ItemData{
			data("commons", 1, false, "mention"),
			data("commons", 2, false, "mention"),
		},
	}
	c := New(model.BadgeAlert)
	c.Register(src)
	fetched(t, c)

	m, _ := c.Model("commons")
	var discarded []int64
	m.Subscribe(model.ListHandlers{OnDiscard: func(items []*model.NotificationItem) {
		for _, item := range items {
			discarded = append(discarded, item.ID())
		}
	}})

	msgs := run(c.MarkItemsRead("commons", []int64{2}, true))
	assert.Equal(t, c.ApplyMarkRead(msgs[0].(MarkReadResultMsg)), nil)
	assert.Equal(t, discarded, []int64{2})
	assert.Equal(t, m.AllItemIDs(), []int64{1})
}

func TestMarkEntireListModelRead(t *testing.T) {
	local := &fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data("enwiki", 1, false, "mention"), data("enwiki", 2, false, "mention")},
	}
	other := &fakeSource{
		info:  source.Info{Name: "dewiki"},
		items: []model.ItemData{data("dewiki", 3, true, "mention")},
	}
	c := New(model.BadgeMessage)
	c.Register(local)
	c.Register(other)
	fetched(t, c)

	msgs := run(c.MarkAllRead())
	// dewiki has nothing unread
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, local.markedAll, []model.BadgeType{model.BadgeMessage})
	assert.Equal(t, len(other.markedAll), 0)

	result := msgs[0].(MarkReadResultMsg)
	assert.Equal(t, result.All, true)
	assert.Equal(t, c.ApplyMarkRead(result), nil)
	assert.Equal(t, c.UnreadCount(), 0)
}

func TestSeenAndTalk(t *testing.T) {
	c := New(model.BadgeMessage)
	c.Register(&fakeSource{
		info: source.Info{Name: "enwiki"},
		items: []model.ItemData{
			data("enwiki", 1, false, model.CategoryTalk),
			data("enwiki", 2, false, "mention"),
		},
	})
	fetched(t, c)

	assert.Equal(t, c.HasUnseen(), true)
	c.MarkAllSeen()
	assert.Equal(t, c.HasUnseen(), false)

	assert.Equal(t, c.HasUnreadTalk(), true)
	msgs := run(c.MarkItemsRead("enwiki", []int64{1}, true))
	assert.Equal(t, c.ApplyMarkRead(msgs[0].(MarkReadResultMsg)), nil)
	assert.Equal(t, c.HasUnreadTalk(), false)
}

func TestRegisterReplacesTransport(t *testing.T) {
	c := New(model.BadgeAlert)
	c.Register(&fakeSource{info: source.Info{Name: "enwiki"}})
	c.Register(&fakeSource{info: source.Info{Name: "enwiki"}})
	assert.Equal(t, c.Sources(), []string{"enwiki"})
}

func TestUnregister(t *testing.T) {
	c := New(model.BadgeAlert)
	c.Register(&fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data("enwiki", 1, false, "mention")},
	})
	c.Register(&fakeSource{
		info:  source.Info{Name: "dewiki"},
		items: []model.ItemData{data("dewiki", 2, false, "mention")},
	})
	fetched(t, c)

	// a fetch started before the source went away
	pending := run(c.Fetch("dewiki"))

	removed, ok := c.Unregister("dewiki")
	assert.Equal(t, ok, true)
	assert.Equal(t, removed.Name(), "dewiki")
	assert.Equal(t, c.Sources(), []string{"enwiki"})
	assert.Equal(t, c.NumItems(), 1)

	created, err := c.ApplyFetch(pending[0].(FetchedMsg))
	assert.Equal(t, err, nil)
	assert.Equal(t, created == nil, true)
	assert.Equal(t, len(c.Models()), 1)

	_, ok = c.Unregister("dewiki")
	assert.Equal(t, ok, false)
}

func TestSeenSurvivesRefetch(t *testing.T) {
	src := &fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data("enwiki", 1, false, "mention")},
	}
	c := New(model.BadgeAlert)
	c.Register(src)
	fetched(t, c)

	msgs := run(c.MarkAllSeen())
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs[0], MarkSeenResultMsg{Badge: model.BadgeAlert, Source: "enwiki"})
	assert.Equal(t, src.markedSeen, []model.BadgeType{model.BadgeAlert})

	// the source still reports the old flag
	fetched(t, c)
	assert.Equal(t, c.HasUnseen(), false)

	// nothing left to persist
	assert.Equal(t, len(run(c.MarkAllSeen())), 0)
	assert.Equal(t, len(src.markedSeen), 1)

	// new arrivals are unseen
	src.items = append(src.items, data("enwiki", 2, false, "mention"))
	fetched(t, c)
	assert.Equal(t, c.HasUnseen(), true)
}

func TestMarkAllReadKeepsLaterArrivals(t *testing.T) {
	src := &fakeSource{
		info:  source.Info{Name: "commons", Foreign: true},
		items: []model.ItemData{data("commons", 1, false, "mention"), data("commons", 2, false, "mention")},
	}
	c := New(model.BadgeAlert)
	c.Register(src)
	fetched(t, c)

	cmd := c.MarkEntireListModelRead("commons")

	// arrives while the request is in flight
	src.items = append(src.items, data("commons", 3, false, "mention"))
	fetched(t, c)

	msgs := run(cmd)
	result := msgs[0].(MarkReadResultMsg)
	assert.Equal(t, result.IDs, []int64{2, 1})
	assert.Equal(t, c.ApplyMarkRead(result), nil)

	m, ok := c.Model("commons")
	assert.Equal(t, ok, true)
	assert.Equal(t, m.AllItemIDs(), []int64{3})
	assert.Equal(t, c.UnreadCount(), 1)
}
