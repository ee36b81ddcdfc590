package badge

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/assert/v2"

	"github.com/nhle/notification-center/internal/controller"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

var baseTime = time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	info       source.Info
	items      []model.ItemData
	markedAll  int
	markedSeen int
}

func (f *fakeSource) Info() source.Info { return f.info }

func (f *fakeSource) Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error) {
	return f.items, nil
}

func (f *fakeSource) MarkRead(ctx context.Context, ids []int64, read bool) error { return nil }

func (f *fakeSource) MarkAllRead(ctx context.Context, badge model.BadgeType) error {
	f.markedAll += 1
	return nil
}

func (f *fakeSource) MarkSeen(ctx context.Context, badge model.BadgeType) error {
	f.markedSeen += 1
	return nil
}

func data(id int64, minutes int, category string) model.ItemData {
	return model.ItemData{
		ID:        id,
		Type:      category,
		Timestamp: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

// drain runs cmd and feeds every resulting message back into the badge
// until nothing is left. It returns the messages the badge did not
// consume.
func drain(b *Model, cmd tea.Cmd) []tea.Msg {
	var rest []tea.Msg
	queue := []tea.Cmd{cmd}
	for 0 < len(queue) {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case controller.FetchedMsg, controller.MarkReadResultMsg, controller.MarkSeenResultMsg:
			queue = append(queue, b.Update(msg))
		case nil:
		default:
			rest = append(rest, msg)
		}
	}
	return rest
}

func newBadge(badge model.BadgeType, opts Options, sources ...*fakeSource) *Model {
	c := controller.New(badge)
	for _, s := range sources {
		c.Register(s)
	}
	return New(c, opts)
}

func TestGroupsSortedNewestFirst(t *testing.T) {
	older := &fakeSource{info: source.Info{Name: "dewiki"}, items: []model.ItemData{data(1, 1, "mention")}}
	newer := &fakeSource{info: source.Info{Name: "commons", Foreign: true}, items: []model.ItemData{data(2, 5, "mention")}}
	b := newBadge(model.BadgeAlert, Options{}, older, newer)

	assert.Equal(t, b.IsLoading(), true)
	drain(b, b.Controller().FetchAll())
	assert.Equal(t, b.IsLoading(), false)

	groups := b.Groups()
	assert.Equal(t, len(groups), 2)
	assert.Equal(t, groups[0].ID(), "commons")
	assert.Equal(t, groups[1].ID(), "dewiki")

	// titles are shown once there is more than one group
	assert.Equal(t, groups[0].IsTitleVisible(), true)
	assert.Equal(t, groups[1].IsTitleVisible(), true)

	// only foreign groups get the bulk read control by default
	assert.Equal(t, groups[0].IsMarkAllReadVisible(), true)
	assert.Equal(t, groups[1].IsMarkAllReadVisible(), false)

	assert.Equal(t, groups[0].RenderedIDs(), []int64{2})
	assert.Equal(t, b.NumItems(), 2)
}

func TestGroupTieBreakByName(t *testing.T) {
	a := &fakeSource{info: source.Info{Name: "a"}, items: []model.ItemData{data(1, 1, "mention")}}
	z := &fakeSource{info: source.Info{Name: "z"}, items: []model.ItemData{data(2, 1, "mention")}}
	b := newBadge(model.BadgeAlert, Options{}, a, z)

	drain(b, b.Controller().FetchAll())
	assert.Equal(t, b.Groups()[0].ID(), "z")
	assert.Equal(t, b.Groups()[1].ID(), "a")
}

func TestSingleGroupHasNoTitle(t *testing.T) {
	src := &fakeSource{info: source.Info{Name: "enwiki"}, items: []model.ItemData{data(1, 1, "mention")}}
	b := newBadge(model.BadgeAlert, Options{MarkAllReadOnLocal: true}, src)

	drain(b, b.Controller().FetchAll())
	assert.Equal(t, b.Groups()[0].IsTitleVisible(), false)
	assert.Equal(t, b.Groups()[0].IsMarkAllReadVisible(), true)
}

func TestOpenMarksSeen(t *testing.T) {
	src := &fakeSource{info: source.Info{Name: "enwiki"}, items: []model.ItemData{data(1, 1, "mention")}}
	b := newBadge(model.BadgeMessage, Options{}, src)

	drain(b, b.Controller().FetchAll())
	assert.Equal(t, b.HasUnseen(), true)

	drain(b, b.Open())
	assert.Equal(t, b.IsOpen(), true)
	assert.Equal(t, b.HasUnseen(), false)
	// the message badge keeps notifications unread
	assert.Equal(t, src.markedAll, 0)
	assert.Equal(t, b.Controller().UnreadCount(), 1)
	assert.Equal(t, src.markedSeen, 1)

	b.Close()
	drain(b, b.Controller().FetchAll())
	assert.Equal(t, b.HasUnseen(), false)
}

func TestMarkReadWhenSeenAfterLoading(t *testing.T) {
	src := &fakeSource{info: source.Info{Name: "enwiki"}, items: []model.ItemData{data(1, 1, "mention"), data(2, 2, "mention")}}
	b := newBadge(model.BadgeAlert, Options{MarkReadWhenSeen: true}, src)

	// opened while loading: marked read once the first fetch lands
	drain(b, b.Open())
	assert.Equal(t, b.IsLoading(), false)
	assert.Equal(t, src.markedAll, 1)
	assert.Equal(t, b.Controller().UnreadCount(), 0)
}

func TestAllTalkRead(t *testing.T) {
	src := &fakeSource{
		info:  source.Info{Name: "enwiki"},
		items: []model.ItemData{data(1, 1, model.CategoryTalk), data(2, 2, "mention")},
	}
	b := newBadge(model.BadgeMessage, Options{}, src)
	drain(b, b.Controller().FetchAll())

	rest := drain(b, b.Controller().MarkItemsRead("enwiki", []int64{2}, true))
	assert.Equal(t, len(rest), 0)

	rest = drain(b, b.Controller().MarkItemsRead("enwiki", []int64{1}, true))
	assert.Equal(t, len(rest), 1)
	assert.Equal(t, rest[0], AllTalkReadMsg{Badge: model.BadgeMessage})
}

func TestIgnoresOtherBadge(t *testing.T) {
	src := &fakeSource{info: source.Info{Name: "enwiki"}, items: []model.ItemData{data(1, 1, "mention")}}
	b := newBadge(model.BadgeAlert, Options{}, src)

	cmd := b.Update(controller.FetchedMsg{Badge: model.BadgeMessage, Source: "enwiki"})
	assert.Equal(t, cmd == nil, true)
	assert.Equal(t, b.IsLoading(), true)
}

func TestKeysNavigateGroups(t *testing.T) {
	a := &fakeSource{info: source.Info{Name: "a"}, items: []model.ItemData{data(1, 2, "mention")}}
	z := &fakeSource{info: source.Info{Name: "z"}, items: []model.ItemData{data(2, 1, "mention")}}
	b := newBadge(model.BadgeAlert, Options{}, a, z)
	drain(b, b.Controller().FetchAll())
	drain(b, b.Open())

	groups := b.Groups()
	assert.Equal(t, groups[0].Focused(), true)

	b.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, groups[0].Focused(), false)
	assert.Equal(t, groups[1].Focused(), true)

	b.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, groups[0].Focused(), true)

	// enter opens the popup on the badge, esc closes it, esc again
	// closes the badge
	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEqual(t, b.View(), "")
	assert.Equal(t, b.detail.Visible(), true)
	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, b.detail.Visible(), false)
	assert.Equal(t, b.IsOpen(), true)
	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, b.IsOpen(), false)
	assert.Equal(t, b.View(), "")
}

func TestRemoveSource(t *testing.T) {
	a := &fakeSource{info: source.Info{Name: "a"}, items: []model.ItemData{data(1, 1, "mention")}}
	z := &fakeSource{info: source.Info{Name: "z"}, items: []model.ItemData{data(2, 5, "mention")}}
	b := newBadge(model.BadgeAlert, Options{}, a, z)
	drain(b, b.Controller().FetchAll())
	drain(b, b.Open())

	// focus the second group, then remove it
	b.Update(tea.KeyMsg{Type: tea.KeyTab})
	drain(b, b.RemoveSource("a"))

	groups := b.Groups()
	assert.Equal(t, len(groups), 1)
	assert.Equal(t, groups[0].ID(), "z")
	assert.Equal(t, groups[0].Focused(), true)
	assert.Equal(t, groups[0].IsTitleVisible(), false)
	assert.Equal(t, b.Controller().Sources(), []string{"z"})
	assert.Equal(t, b.NumItems(), 1)

	// unknown names are ignored
	drain(b, b.RemoveSource("a"))
	assert.Equal(t, len(b.Groups()), 1)
}
