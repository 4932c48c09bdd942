package db

import (
	"database/sql"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/google/uuid"
)

const (
	sqlEnqueueMessage = `INSERT INTO queue_messages(id, kind, body, attempts, next_retry_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	sqlSelectDueMessages = `SELECT id, kind, body, attempts, next_retry_at, created_at FROM queue_messages
                        WHERE next_retry_at <= ? ORDER BY next_retry_at ASC LIMIT ?`
	sqlUpdateMessageAttempt = `UPDATE queue_messages SET attempts = ?, next_retry_at = ? WHERE id = ?`
	sqlDeleteMessage        = `DELETE FROM queue_messages WHERE id = ?`
)

// EnqueueMessage persists a queue envelope for the delivery worker.
func (db *DB) EnqueueMessage(msg *domain.QueueMessage) error {
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.NextRetryAt.IsZero() {
		msg.NextRetryAt = msg.CreatedAt
	}
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlEnqueueMessage, msg.Id, msg.Kind, msg.Body, msg.Attempts, msg.NextRetryAt, msg.CreatedAt)
		return err
	})
}

// ReadDueMessages returns queued messages whose retry time has passed.
func (db *DB) ReadDueMessages(limit int) (error, *[]domain.QueueMessage) {
	rows, err := db.db.Query(sqlSelectDueMessages, time.Now(), limit)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var messages []domain.QueueMessage
	for rows.Next() {
		var m domain.QueueMessage
		if err := rows.Scan(&m.Id, &m.Kind, &m.Body, &m.Attempts, &m.NextRetryAt, &m.CreatedAt); err != nil {
			return err, nil
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	return nil, &messages
}

func (db *DB) UpdateMessageAttempt(id uuid.UUID, attempts int, nextRetry time.Time) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateMessageAttempt, attempts, nextRetry, id)
		return err
	})
}

func (db *DB) DeleteMessage(id uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteMessage, id)
		return err
	})
}
