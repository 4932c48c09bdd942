package db

import (
	"database/sql"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/google/uuid"
)

const (
	sqlInsertBookmark = `INSERT INTO bookmarks(id, user_id, url, title, instance, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	sqlSelectBookmark = `SELECT id, user_id, url, title, instance, created_at FROM bookmarks`

	sqlSelectBookmarkById     = sqlSelectBookmark + ` WHERE id = ?`
	sqlSelectBookmarksByUser  = sqlSelectBookmark + ` WHERE user_id = ? ORDER BY created_at DESC`
	sqlSelectRecentBookmarks  = sqlSelectBookmark + ` ORDER BY created_at DESC LIMIT ?`

	sqlInsertTag         = `INSERT INTO tags(id, name, slug, public) VALUES (?, ?, ?, ?)`
	sqlInsertBookmarkTag = `INSERT INTO bookmark_tags(bookmark_id, tag_id, position) VALUES (?, ?, ?)`
	sqlSelectTagsForBookmark = `SELECT tags.id, tags.name, tags.slug, tags.public FROM tags
                        INNER JOIN bookmark_tags ON bookmark_tags.tag_id = tags.id
                        WHERE bookmark_tags.bookmark_id = ?
                        ORDER BY bookmark_tags.position ASC`

	sqlInsertFileObject     = `INSERT INTO file_objects(id, bookmark_id, kind, file_path, mime) VALUES (?, ?, ?, ?, ?)`
	sqlSelectFileForBookmark = `SELECT id, file_path, mime FROM file_objects WHERE bookmark_id = ? AND kind = ?`
)

const (
	fileKindCover   = "cover"
	fileKindArchive = "archive"
)

// CreateBookmark persists a bookmark with its tags and attachments in a
// single transaction. Tag positions follow slice order.
func (db *DB) CreateBookmark(bookmark *domain.Bookmark) error {
	if bookmark.Id == uuid.Nil {
		bookmark.Id = uuid.New()
	}
	if bookmark.CreatedAt.IsZero() {
		bookmark.CreatedAt = time.Now()
	}

	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertBookmark, bookmark.Id, bookmark.UserId, bookmark.Url,
			bookmark.Title, bookmark.Instance, bookmark.CreatedAt)
		if err != nil {
			return err
		}

		for i, tag := range bookmark.Tags {
			if tag.Id == uuid.Nil {
				tag.Id = uuid.New()
			}
			if _, err := tx.Exec(sqlInsertTag, tag.Id, tag.Name, tag.Slug, boolToInt(tag.Public)); err != nil {
				// tag may already exist, link it anyway
				row := tx.QueryRow(`SELECT id FROM tags WHERE slug = ?`, tag.Slug)
				if scanErr := row.Scan(&tag.Id); scanErr != nil {
					return err
				}
			}
			if _, err := tx.Exec(sqlInsertBookmarkTag, bookmark.Id, tag.Id, i); err != nil {
				return err
			}
		}

		if bookmark.MainImage != nil {
			if err := insertFileObject(tx, bookmark.Id, fileKindCover, bookmark.MainImage); err != nil {
				return err
			}
		}
		if bookmark.Archive != nil {
			if err := insertFileObject(tx, bookmark.Id, fileKindArchive, bookmark.Archive); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertFileObject(tx *sql.Tx, bookmarkId uuid.UUID, kind string, file *domain.FileObject) error {
	if file.Id == uuid.Nil {
		file.Id = uuid.New()
	}
	_, err := tx.Exec(sqlInsertFileObject, file.Id, bookmarkId, kind, file.FilePath, file.Mime)
	return err
}

func (db *DB) ReadBookmarkById(id uuid.UUID) (error, *domain.Bookmark) {
	row := db.db.QueryRow(sqlSelectBookmarkById, id)
	bookmark, err := db.scanBookmark(row)
	if err != nil {
		return err, nil
	}
	if err := db.loadBookmarkRelations(bookmark); err != nil {
		return err, nil
	}
	return nil, bookmark
}

func (db *DB) ReadBookmarksByUserId(userId uuid.UUID) (error, *[]domain.Bookmark) {
	rows, err := db.db.Query(sqlSelectBookmarksByUser, userId)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectBookmarks(rows)
}

func (db *DB) ReadRecentBookmarks(limit int) (error, *[]domain.Bookmark) {
	rows, err := db.db.Query(sqlSelectRecentBookmarks, limit)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectBookmarks(rows)
}

func (db *DB) collectBookmarks(rows *sql.Rows) (error, *[]domain.Bookmark) {
	var bookmarks []domain.Bookmark
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.Id, &b.UserId, &b.Url, &b.Title, &b.Instance, &b.CreatedAt); err != nil {
			return err, nil
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	for i := range bookmarks {
		if err := db.loadBookmarkRelations(&bookmarks[i]); err != nil {
			return err, nil
		}
	}
	return nil, &bookmarks
}

func (db *DB) scanBookmark(row *sql.Row) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := row.Scan(&b.Id, &b.UserId, &b.Url, &b.Title, &b.Instance, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) loadBookmarkRelations(bookmark *domain.Bookmark) error {
	rows, err := db.db.Query(sqlSelectTagsForBookmark, bookmark.Id)
	if err != nil {
		return err
	}
	defer rows.Close()

	bookmark.Tags = nil
	for rows.Next() {
		var tag domain.Tag
		var public int
		if err := rows.Scan(&tag.Id, &tag.Name, &tag.Slug, &public); err != nil {
			return err
		}
		tag.Public = public != 0
		bookmark.Tags = append(bookmark.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	bookmark.MainImage, err = db.readFileObject(bookmark.Id, fileKindCover)
	if err != nil {
		return err
	}
	bookmark.Archive, err = db.readFileObject(bookmark.Id, fileKindArchive)
	return err
}

func (db *DB) readFileObject(bookmarkId uuid.UUID, kind string) (*domain.FileObject, error) {
	row := db.db.QueryRow(sqlSelectFileForBookmark, bookmarkId, kind)
	var file domain.FileObject
	err := row.Scan(&file.Id, &file.FilePath, &file.Mime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
