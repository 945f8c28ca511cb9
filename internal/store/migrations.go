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

CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS listings (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category_id INTEGER NOT NULL DEFAULT 0,
	seller_id   INTEGER NOT NULL DEFAULT 0,
	start_price REAL NOT NULL DEFAULT 0,
	current_bid REAL NOT NULL DEFAULT 0,
	bid_count   INTEGER NOT NULL DEFAULT 0,
	image_url   TEXT NOT NULL DEFAULT '',
	ends_at     DATETIME NOT NULL,
	created_at  DATETIME NOT NULL,
	fetched_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_ends_at ON listings(ends_at);
CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
