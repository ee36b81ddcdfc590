package detail

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/assert/v2"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/ui/subgroup"
)

func TestHiddenByDefault(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 10)

	assert.Equal(t, m.Visible(), false)
	assert.Equal(t, m.View(), "")

	_, ok := m.Popup()
	assert.Equal(t, ok, false)
}

func TestShowRendersNotification(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 12)
	m.Show(subgroup.Popup{
		Title:     "Alice mentioned you",
		Body:      "on Talk:Main Page",
		URL:       "https://en.wikipedia.org/wiki/Talk:Main_Page",
		Source:    "enwiki",
		Category:  "mention",
		Timestamp: time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, m.Visible(), true)
	view := m.View()
	assert.Equal(t, strings.Contains(view, "Alice mentioned you"), true)
	assert.Equal(t, strings.Contains(view, "enwiki"), true)
	assert.Equal(t, strings.Contains(view, "mention"), true)
	assert.Equal(t, strings.Contains(view, "unread"), true)

	p, ok := m.Popup()
	assert.Equal(t, ok, true)
	assert.Equal(t, p.Source, "enwiki")
}

func TestEmptyBody(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 12)
	m.Show(subgroup.Popup{Title: "Edit reverted", Read: true})

	view := m.View()
	assert.Equal(t, strings.Contains(view, "No details"), true)
	assert.Equal(t, strings.Contains(view, "read"), true)
}

func TestBackHides(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 12)
	m.Show(subgroup.Popup{Title: "Welcome"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, m.Visible(), true)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, m.Visible(), false)
}
