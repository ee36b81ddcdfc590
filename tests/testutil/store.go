// Package testutil holds helpers shared by the notification center tests.
package testutil

import (
	"context"
	"testing"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// NewTestStore opens an in-memory notification store with every
// migration applied and closes it when the test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening notification store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing notification store: %v", err)
		}
	})

	return s
}

// SeedNotifications caches items in s as if a wiki had just served them.
// Items without a badge go under alerts.
func SeedNotifications(t *testing.T, s store.Store, items ...model.ItemData) {
	t.Helper()

	for i := range items {
		if items[i].Badge == "" {
			items[i].Badge = model.BadgeAlert
		}
	}
	if err := s.UpsertNotifications(context.Background(), items); err != nil {
		t.Fatalf("seeding notifications: %v", err)
	}
}
