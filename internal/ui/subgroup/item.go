package subgroup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// ItemWidget is the rendered counterpart of one notification.
type ItemWidget struct {
	controller Controller
	listName   string
	item       *model.NotificationItem
	overlay    Overlay
	bundle     bool
}

func newItemWidget(
	controller Controller,
	listName string,
	item *model.NotificationItem,
	overlay Overlay,
) *ItemWidget {
	return &ItemWidget{
		controller: controller,
		listName:   listName,
		item:       item,
		overlay:    overlay,
		bundle:     item.IsBundled(),
	}
}

// ID returns the id of the notification the widget renders.
func (w *ItemWidget) ID() int64 { return w.item.ID() }

// Item returns the notification the widget renders.
func (w *ItemWidget) Item() *model.NotificationItem { return w.item }

// FilterValue returns the string used for fuzzy filtering.
func (w *ItemWidget) FilterValue() string { return w.item.Content().Header }

// ToggleRead asks the controller to flip the read state of the
// notification. The widget itself changes nothing.
func (w *ItemWidget) ToggleRead() tea.Cmd {
	if w.controller == nil {
		return nil
	}
	return w.controller.MarkItemsRead(w.listName, []int64{w.item.ID()}, !w.item.IsRead())
}

// Open shows the full notification on the overlay.
func (w *ItemWidget) Open() {
	c := w.item.Content()
	w.overlay.Present(Popup{
		Title:     c.Header,
		Body:      c.Body,
		URL:       w.item.URL(),
		Source:    w.item.Source(),
		Category:  w.item.Type(),
		Timestamp: w.item.Timestamp(),
		Read:      w.item.IsRead(),
	})
}

// itemDelegate implements list.ItemDelegate for notification rows.
type itemDelegate struct{}

func (d itemDelegate) Height() int { return 1 }

func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification line.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	widget, ok := li.(*ItemWidget)
	if !ok {
		return
	}
	item := widget.item

	marker := " "
	if !item.IsRead() {
		marker = theme.UnreadMarkerStyle.Render("●")
	}

	badges := ""
	if widget.bundle {
		badges += theme.BundleStyle.Render(" ⧉")
	}
	if item.IsTalk() {
		badges += theme.TalkStyle.Render(" ✉")
	}

	header := item.Content().Header
	if header == "" {
		header = fmt.Sprintf("notification %d", item.ID())
	}

	line := fmt.Sprintf(
		"%s %s%s  %s",
		marker, header, badges,
		theme.DimmedStyle.Render(relativeTime(item.Timestamp())),
	)

	if item.IsRead() {
		line = theme.DimmedStyle.Render(line)
	}

	if m.FilterState() != list.Filtering && index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, strings.TrimRight(line, " "))
}

// relativeTime returns a short relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo", int(d.Hours()/24/30))
	default:
		return fmt.Sprintf("%dy", int(d.Hours()/24/365))
	}
}
