package model

import "time"

// ReadMark records one read-state change made from this client.
type ReadMark struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	NotificationID int64     `json:"notification_id"`
	Read           bool      `json:"read"`
	MarkedAt       time.Time `json:"marked_at"`
}
