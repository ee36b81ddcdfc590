package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/notification-center/internal/model"
)

// UpsertNotifications inserts or updates a batch of notifications. An
// existing row takes every incoming field except seen, which never goes
// back to false.
func (s *SQLiteStore) UpsertNotifications(ctx context.Context, items []model.ItemData) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO notifications (
			id, source, badge, category, timestamp,
			read, seen, bundled, is_foreign,
			header, body, url, fetched_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?
		)
		ON CONFLICT(source, id) DO UPDATE SET
			badge = excluded.badge,
			category = excluded.category,
			timestamp = excluded.timestamp,
			read = excluded.read,
			seen = MAX(notifications.seen, excluded.seen),
			bundled = excluded.bundled,
			is_foreign = excluded.is_foreign,
			header = excluded.header,
			body = excluded.body,
			url = excluded.url,
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range items {
		if n.Source == "" {
			return fmt.Errorf("notification %d has no source", n.ID)
		}
		badge := n.Badge
		if badge == "" {
			badge = model.BadgeAlert
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, n.Source, string(badge), n.Type, n.Timestamp.UTC(),
			boolToInt(n.Read), boolToInt(n.Seen), boolToInt(n.Bundled), boolToInt(n.Foreign),
			n.Content.Header, n.Content.Body, n.URL, now,
		)
		if err != nil {
			return fmt.Errorf("upserting notification %s/%d: %w", n.Source, n.ID, err)
		}
	}

	return tx.Commit()
}

// GetNotifications retrieves notifications matching the filter, newest
// first with ties broken by descending id.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
	filter NotificationFilter,
) ([]model.ItemData, error) {
	var conditions []string
	var args []interface{}

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Badge != "" {
		conditions = append(conditions, "badge = ?")
		args = append(args, string(filter.Badge))
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "read = 0")
	}

	query := `
		SELECT id, source, badge, category, timestamp,
			read, seen, bundled, is_foreign,
			header, body, url
		FROM notifications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	items := []model.ItemData{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// GetUnreadCount returns the number of unread notifications of a source
// under badge. An empty badge counts both.
func (s *SQLiteStore) GetUnreadCount(
	ctx context.Context,
	source string,
	badge model.BadgeType,
) (int, error) {
	query := "SELECT COUNT(*) FROM notifications WHERE source = ? AND read = 0"
	args := []interface{}{source}
	if badge != "" {
		query += " AND badge = ?"
		args = append(args, string(badge))
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting unread notifications of %s: %w", source, err)
	}
	return count, nil
}

// MarkNotificationsRead sets the read flag of the given notifications and
// records a read mark for every one that actually changed. Unknown ids are
// ignored.
func (s *SQLiteStore) MarkNotificationsRead(
	ctx context.Context,
	source string,
	ids []int64,
	read bool,
) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sqlx.In(
		"SELECT id FROM notifications WHERE source = ? AND read != ? AND id IN (?)",
		source, boolToInt(read), ids,
	)
	if err != nil {
		return fmt.Errorf("building read query: %w", err)
	}

	var changed []int64
	if err := tx.SelectContext(ctx, &changed, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("selecting notifications of %s: %w", source, err)
	}

	if err := markRead(ctx, tx, source, changed, read); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkAllNotificationsRead marks every unread notification of a source
// under badge as read and returns the ids that changed.
func (s *SQLiteStore) MarkAllNotificationsRead(
	ctx context.Context,
	source string,
	badge model.BadgeType,
) ([]int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := "SELECT id FROM notifications WHERE source = ? AND read = 0"
	args := []interface{}{source}
	if badge != "" {
		query += " AND badge = ?"
		args = append(args, string(badge))
	}

	changed := []int64{}
	if err := tx.SelectContext(ctx, &changed, query, args...); err != nil {
		return nil, fmt.Errorf("selecting unread notifications of %s: %w", source, err)
	}

	if err := markRead(ctx, tx, source, changed, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing read marks: %w", err)
	}
	return changed, nil
}

// MarkNotificationsSeen sets the seen flag on every notification of a
// source under badge, or under every badge when badge is empty.
func (s *SQLiteStore) MarkNotificationsSeen(ctx context.Context, source string, badge model.BadgeType) error {
	query := "UPDATE notifications SET seen = 1 WHERE source = ? AND seen = 0"
	args := []interface{}{source}
	if badge != "" {
		query += " AND badge = ?"
		args = append(args, string(badge))
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking notifications of %s seen: %w", source, err)
	}
	return nil
}

// GetReadMarks returns the read marks recorded for a source, oldest first.
func (s *SQLiteStore) GetReadMarks(ctx context.Context, source string) ([]model.ReadMark, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, source, notification_id, read, marked_at
		FROM read_marks WHERE source = ? ORDER BY marked_at, rowid`,
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("querying read marks: %w", err)
	}
	defer rows.Close()

	marks := []model.ReadMark{}
	for rows.Next() {
		var (
			mark    model.ReadMark
			readInt int
		)
		if err := rows.Scan(&mark.ID, &mark.Source, &mark.NotificationID, &readInt, &mark.MarkedAt); err != nil {
			return nil, fmt.Errorf("scanning read mark row: %w", err)
		}
		mark.Read = readInt != 0
		marks = append(marks, mark)
	}

	return marks, rows.Err()
}

// markRead updates the read flag of ids and records one read mark each.
func markRead(ctx context.Context, tx *sqlx.Tx, source string, ids []int64, read bool) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		"UPDATE notifications SET read = ? WHERE source = ? AND id IN (?)",
		boolToInt(read), source, ids,
	)
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("marking notifications of %s: %w", source, err)
	}

	now := time.Now().UTC()
	for _, id := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO read_marks (id, source, notification_id, read, marked_at)
			VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), source, id, boolToInt(read), now,
		)
		if err != nil {
			return fmt.Errorf("recording read mark for %s/%d: %w", source, id, err)
		}
	}

	return nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.ItemData, error) {
	var (
		n       model.ItemData
		badge   string
		readInt int
		seenInt int
		bundled int
		foreign int
	)

	err := rows.Scan(
		&n.ID, &n.Source, &badge, &n.Type, &n.Timestamp,
		&readInt, &seenInt, &bundled, &foreign,
		&n.Content.Header, &n.Content.Body, &n.URL,
	)
	if err != nil {
		return model.ItemData{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Badge = model.BadgeType(badge)
	n.Read = readInt != 0
	n.Seen = seenInt != 0
	n.Bundled = bundled != 0
	n.Foreign = foreign != 0

	return n, nil
}
