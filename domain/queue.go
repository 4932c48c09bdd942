package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueueMessage is a persisted queue envelope. Body is the JSON-encoded
// typed message for Kind; the worker retries until the attempt budget
// runs out unless a handler reports the message as unrecoverable.
type QueueMessage struct {
	Id          uuid.UUID
	Kind        string
	Body        string
	Attempts    int
	NextRetryAt time.Time
	CreatedAt   time.Time
}
