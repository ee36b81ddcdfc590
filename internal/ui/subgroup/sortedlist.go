package subgroup

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/nhle/notification-center/internal/orderedlist"
)

// SortedListWidget keeps item widgets in display order. The ordered
// collection is the source of truth; the bubbles list is only a
// projection of it used for cursor movement, paging and drawing.
type SortedListWidget struct {
	items *orderedlist.List[int64, *ItemWidget]
	list  list.Model
}

// NewSortedListWidget creates an empty list ordered by cmp.
func NewSortedListWidget(cmp orderedlist.CmpFunc[*ItemWidget]) *SortedListWidget {
	l := list.New([]list.Item{}, itemDelegate{}, 80, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &SortedListWidget{
		items: orderedlist.New[int64, *ItemWidget]((*ItemWidget).ID, cmp),
		list:  l,
	}
}

// AddItems inserts widgets in sorted position. A widget for an id that
// is already rendered replaces the old one.
func (s *SortedListWidget) AddItems(widgets ...*ItemWidget) {
	s.items.Add(widgets...)
	s.project()
}

// RemoveItems removes the widgets rendering the given ids and returns
// them. Ids without a widget are ignored.
func (s *SortedListWidget) RemoveItems(ids ...int64) []*ItemWidget {
	removed := s.items.Remove(ids...)
	if 0 < len(removed) {
		s.project()
	}
	return removed
}

// ClearItems removes every widget.
func (s *SortedListWidget) ClearItems() {
	s.items.Clear()
	s.project()
}

// ItemFromID returns the widget rendering the given id.
func (s *SortedListWidget) ItemFromID(id int64) (*ItemWidget, bool) {
	return s.items.Get(id)
}

// Items returns the widgets in display order.
func (s *SortedListWidget) Items() []*ItemWidget {
	return s.items.Items()
}

// IDs returns the rendered ids in display order.
func (s *SortedListWidget) IDs() []int64 {
	return s.items.Keys()
}

// Len returns the number of rendered widgets.
func (s *SortedListWidget) Len() int {
	return s.items.Len()
}

// Selected returns the widget under the cursor.
func (s *SortedListWidget) Selected() (*ItemWidget, bool) {
	i := s.list.Index()
	if i < 0 || s.items.Len() <= i {
		return nil, false
	}
	return s.items.At(i), true
}

// CursorUp moves the cursor one row up.
func (s *SortedListWidget) CursorUp() {
	s.list.CursorUp()
}

// CursorDown moves the cursor one row down.
func (s *SortedListWidget) CursorDown() {
	s.list.CursorDown()
}

// SetSize sets the drawing area.
func (s *SortedListWidget) SetSize(width, height int) {
	s.list.SetSize(width, height)
}

// View draws the projected list.
func (s *SortedListWidget) View() string {
	return s.list.View()
}

// project copies the current order into the bubbles list, keeping the
// cursor on the same notification when it is still rendered.
func (s *SortedListWidget) project() {
	var selectedID int64
	previous, hadSelection := s.list.SelectedItem().(*ItemWidget)
	if hadSelection {
		selectedID = previous.ID()
	}

	ordered := s.items.Items()
	items := make([]list.Item, len(ordered))
	for i, w := range ordered {
		items[i] = w
	}
	s.list.SetItems(items)

	switch {
	case len(items) == 0:
		s.list.Select(0)
	case hadSelection && s.items.Has(selectedID):
		s.list.Select(s.items.IndexOf(selectedID))
	case len(items) <= s.list.Index():
		s.list.Select(len(items) - 1)
	}
}
