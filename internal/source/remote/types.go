package remote

import "time"

// Notification is one notification as returned by the API.
type Notification struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Seen      bool      `json:"seen"`
	Bundled   bool      `json:"bundled"`
	Header    string    `json:"header"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
}

// ListResponse is the body of GET /notifications.
type ListResponse struct {
	Notifications []Notification `json:"notifications"`
}

// MarkReadRequest is the body of POST /notifications/read.
type MarkReadRequest struct {
	IDs  []int64 `json:"ids"`
	Read bool    `json:"read"`
}

// MarkAllReadRequest is the body of POST /notifications/read-all.
type MarkAllReadRequest struct {
	Type string `json:"type"`
}

// MarkSeenRequest is the body of POST /notifications/seen.
type MarkSeenRequest struct {
	Type string `json:"type"`
}

// ErrorResponse is the error body the API returns on failure.
type ErrorResponse struct {
	Error struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}
