package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// Every step only creates what is absent; existing tables are never altered.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS package_profiles (
	user_id      TEXT NOT NULL,
	package_id   TEXT NOT NULL,
	family_name  TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	publisher    TEXT NOT NULL DEFAULT '',
	logo_path    TEXT,
	PRIMARY KEY (user_id, package_id)
);

CREATE TABLE IF NOT EXISTS toast_notifications (
	user_id         TEXT NOT NULL,
	package_id      TEXT NOT NULL,
	notification_id TEXT NOT NULL,
	created_time    DATETIME NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (user_id, package_id, notification_id)
);

CREATE INDEX IF NOT EXISTS idx_toast_notifications_package_id
	ON toast_notifications(package_id);

CREATE TABLE IF NOT EXISTS spaces (
	user_id     TEXT NOT NULL,
	space_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	icon_path   TEXT NOT NULL DEFAULT '',
	is_default  INTEGER NOT NULL DEFAULT 0 CHECK(is_default IN (0, 1)),
	PRIMARY KEY (user_id, space_id)
);

CREATE TABLE IF NOT EXISTS space_mappers (
	user_id    TEXT NOT NULL,
	id         TEXT NOT NULL,
	space_id   TEXT NOT NULL,
	package_id TEXT NOT NULL,
	PRIMARY KEY (user_id, space_id, package_id)
);

CREATE INDEX IF NOT EXISTS idx_space_mappers_space_id ON space_mappers(space_id);
CREATE INDEX IF NOT EXISTS idx_space_mappers_package_id ON space_mappers(package_id);

CREATE TABLE IF NOT EXISTS custom_priority_apps (
	id           TEXT PRIMARY KEY,
	package_id   TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	publisher    TEXT NOT NULL DEFAULT '',
	priority     TEXT NOT NULL DEFAULT 'none'
		CHECK(priority IN ('none', 'high', 'medium', 'low')),
	is_enabled   INTEGER NOT NULL DEFAULT 1 CHECK(is_enabled IN (0, 1)),
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(package_id, user_id)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
