package model

import "time"

// BadgeType selects which badge a notification belongs to.
type BadgeType string

const (
	BadgeAlert   BadgeType = "alert"
	BadgeMessage BadgeType = "message"
)

// CategoryTalk marks notifications about edits to the user's talk page.
const CategoryTalk = "edit-user-talk"

// Content is the rendered text of a notification.
type Content struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

// ItemData is the plain record a transport produces for one notification.
// It is turned into a NotificationItem with NewNotificationItem.
type ItemData struct {
	// ID is unique within a source.
	ID int64 `json:"id"`

	// Source is the key of the wiki the notification came from.
	Source string `json:"source"`

	// Type is the category tag, e.g. CategoryTalk.
	Type string `json:"type"`

	// Badge is the badge the notification is shown under.
	Badge BadgeType `json:"badge"`

	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Seen      bool      `json:"seen"`
	Bundled   bool      `json:"bundled"`
	Foreign   bool      `json:"foreign"`
	Content   Content   `json:"content"`
	URL       string    `json:"url"`
}

// NotificationItem is the live state of one notification. ID and
// Timestamp never change after construction; read and seen flags do, and
// every real change is reported to the list model that holds the item.
type NotificationItem struct {
	id        int64
	source    string
	category  string
	badge     BadgeType
	timestamp time.Time
	bundled   bool
	foreign   bool
	content   Content
	url       string

	read bool
	seen bool

	onChange func(*NotificationItem)
}

// NewNotificationItem builds an item from transport data.
func NewNotificationItem(d ItemData) *NotificationItem {
	return &NotificationItem{
		id:        d.ID,
		source:    d.Source,
		category:  d.Type,
		badge:     d.Badge,
		timestamp: d.Timestamp,
		bundled:   d.Bundled,
		foreign:   d.Foreign,
		content:   d.Content,
		url:       d.URL,
		read:      d.Read,
		seen:      d.Seen,
	}
}

func (n *NotificationItem) ID() int64            { return n.id }
func (n *NotificationItem) Source() string       { return n.source }
func (n *NotificationItem) Type() string         { return n.category }
func (n *NotificationItem) Badge() BadgeType     { return n.badge }
func (n *NotificationItem) Timestamp() time.Time { return n.timestamp }
func (n *NotificationItem) IsBundled() bool      { return n.bundled }
func (n *NotificationItem) IsForeign() bool      { return n.foreign }
func (n *NotificationItem) Content() Content     { return n.content }
func (n *NotificationItem) URL() string          { return n.url }
func (n *NotificationItem) IsRead() bool         { return n.read }
func (n *NotificationItem) IsSeen() bool         { return n.seen }

// IsTalk reports whether the notification is about the user's talk page.
func (n *NotificationItem) IsTalk() bool {
	return n.category == CategoryTalk
}

// ToggleRead sets the read flag. It reports whether the flag changed.
func (n *NotificationItem) ToggleRead(read bool) bool {
	if n.read == read {
		return false
	}
	n.read = read
	n.changed()
	return true
}

// ToggleSeen sets the seen flag. It reports whether the flag changed.
func (n *NotificationItem) ToggleSeen(seen bool) bool {
	if n.seen == seen {
		return false
	}
	n.seen = seen
	n.changed()
	return true
}

// Data returns a snapshot of the item as transport data.
func (n *NotificationItem) Data() ItemData {
	return ItemData{
		ID:        n.id,
		Source:    n.source,
		Type:      n.category,
		Badge:     n.badge,
		Timestamp: n.timestamp,
		Read:      n.read,
		Seen:      n.seen,
		Bundled:   n.bundled,
		Foreign:   n.foreign,
		Content:   n.content,
		URL:       n.url,
	}
}

func (n *NotificationItem) changed() {
	if n.onChange != nil {
		n.onChange(n)
	}
}
