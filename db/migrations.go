package db

import (
	"database/sql"

	"github.com/charmbracelet/log"
)

const (
	sqlCreateUsersTable = `CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateActorsTable = `CREATE TABLE IF NOT EXISTS actors (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT,
		username TEXT NOT NULL,
		domain TEXT NOT NULL,
		uri TEXT UNIQUE NOT NULL,
		inbox_url TEXT,
		outbox_url TEXT,
		shared_inbox TEXT,
		followers_url TEXT,
		following_url TEXT,
		public_key_pem TEXT NOT NULL,
		private_key_pem TEXT NOT NULL DEFAULT '',
		key_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateActorsIndices = `
		CREATE INDEX IF NOT EXISTS idx_actors_uri ON actors(uri);
		CREATE INDEX IF NOT EXISTS idx_actors_owner_id ON actors(owner_id);
	`

	sqlCreateBookmarksTable = `CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		instance TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateBookmarksIndices = `
		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_created_at ON bookmarks(created_at DESC);
	`

	sqlCreateTagsTable = `CREATE TABLE IF NOT EXISTS tags (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		public INTEGER DEFAULT 0,
		UNIQUE(slug)
	)`

	// position preserves the tag order of the bookmark, federated
	// payloads depend on it
	sqlCreateBookmarkTagsTable = `CREATE TABLE IF NOT EXISTS bookmark_tags (
		bookmark_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (bookmark_id, tag_id)
	)`

	sqlCreateFileObjectsTable = `CREATE TABLE IF NOT EXISTS file_objects (
		id TEXT NOT NULL PRIMARY KEY,
		bookmark_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		file_path TEXT NOT NULL,
		mime TEXT NOT NULL,
		UNIQUE(bookmark_id, kind)
	)`

	sqlCreateFollowingsTable = `CREATE TABLE IF NOT EXISTS followings (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, actor_id)
	)`

	sqlCreateFollowersTable = `CREATE TABLE IF NOT EXISTS followers (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, actor_id)
	)`

	sqlCreateQueueTable = `CREATE TABLE IF NOT EXISTS queue_messages (
		id TEXT NOT NULL PRIMARY KEY,
		kind TEXT NOT NULL,
		body TEXT NOT NULL,
		attempts INTEGER DEFAULT 0,
		next_retry_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateQueueIndices = `
		CREATE INDEX IF NOT EXISTS idx_queue_next_retry_at ON queue_messages(next_retry_at);
	`
)

// RunMigrations creates all tables and indices. Every statement is
// idempotent, so re-running on startup is safe.
func (db *DB) RunMigrations() error {
	log.Info("Running database migrations...")

	return db.wrapTransaction(func(tx *sql.Tx) error {
		statements := []string{
			sqlCreateUsersTable,
			sqlCreateActorsTable,
			sqlCreateActorsIndices,
			sqlCreateBookmarksTable,
			sqlCreateBookmarksIndices,
			sqlCreateTagsTable,
			sqlCreateBookmarkTagsTable,
			sqlCreateFileObjectsTable,
			sqlCreateFollowingsTable,
			sqlCreateFollowersTable,
			sqlCreateQueueTable,
			sqlCreateQueueIndices,
		}

		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
