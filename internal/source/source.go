package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/notification-center/internal/model"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by remote clients when a 401 response is received.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Source, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Info describes a wiki notifications can come from.
type Info struct {
	// Name is the unique key of the source.
	Name string

	// Title is the display label of the source.
	Title string

	// URL is a page URL template with a "$1" placeholder.
	URL string

	// Foreign is true for remote wikis.
	Foreign bool
}

// ListConfig returns the list model configuration for the source.
func (i Info) ListConfig() model.SourceListConfig {
	return model.SourceListConfig{
		Name:      i.Name,
		Source:    i.Name,
		Title:     i.Title,
		SourceURL: i.URL,
		Foreign:   i.Foreign,
	}
}

// Source is the transport for one wiki's notifications.
type Source interface {
	// Info describes the source.
	Info() Info

	// Fetch returns the current notifications shown under badge.
	Fetch(ctx context.Context, badge model.BadgeType) ([]model.ItemData, error)

	// MarkRead sets the read state of the given notifications.
	MarkRead(ctx context.Context, ids []int64, read bool) error

	// MarkAllRead marks every notification shown under badge as read.
	MarkAllRead(ctx context.Context, badge model.BadgeType) error

	// MarkSeen marks every notification shown under badge as seen.
	MarkSeen(ctx context.Context, badge model.BadgeType) error
}
