package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sources (
	name              TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	api_url           TEXT NOT NULL DEFAULT '',
	is_foreign        INTEGER NOT NULL DEFAULT 0,
	enabled           INTEGER NOT NULL DEFAULT 1,
	poll_interval_sec INTEGER NOT NULL DEFAULT 120,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id          INTEGER NOT NULL,
	source      TEXT NOT NULL,
	badge       TEXT NOT NULL DEFAULT 'alert',
	category    TEXT NOT NULL DEFAULT '',
	timestamp   DATETIME NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	seen        INTEGER NOT NULL DEFAULT 0,
	bundled     INTEGER NOT NULL DEFAULT 0,
	is_foreign  INTEGER NOT NULL DEFAULT 0,
	header      TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	fetched_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source, id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_source_badge ON notifications(source, badge);
CREATE INDEX IF NOT EXISTS idx_notifications_timestamp ON notifications(timestamp);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS read_marks (
	id              TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	notification_id INTEGER NOT NULL,
	read            INTEGER NOT NULL,
	marked_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_read_marks_source ON read_marks(source);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(source, badge, read);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
