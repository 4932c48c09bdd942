package activitypub

import (
	"encoding/json"
	"fmt"

	"github.com/bookmarkhive/hive/db"
	"github.com/bookmarkhive/hive/domain"
	"github.com/google/uuid"
)

// Queue message kinds.
const (
	KindSendFollow    = "send_follow"
	KindSend          = "send"
	KindReceiveFollow = "receive_follow"
)

// Message is a typed queue envelope. Each message carries enough data
// to be processed independently of the HTTP request that produced it.
type Message interface {
	Kind() string
}

// SendFollowMessage asks the pipeline to deliver a Follow for a stored
// following edge.
type SendFollowMessage struct {
	FollowingId uuid.UUID `json:"followingId"`
}

func (SendFollowMessage) Kind() string { return KindSendFollow }

// SendMessage is a generic outbound delivery: sign payload as the actor
// behind ActorURI and POST it to InboxURL.
type SendMessage struct {
	Payload  json.RawMessage `json:"payload"`
	InboxURL string          `json:"inboxUrl"`
	ActorURI string          `json:"actorUri"`
}

func (SendMessage) Kind() string { return KindSend }

// ReceiveFollowMessage carries an inbound Follow payload from the inbox
// endpoint into asynchronous processing.
type ReceiveFollowMessage struct {
	Payload json.RawMessage `json:"payload"`
}

func (ReceiveFollowMessage) Kind() string { return KindReceiveFollow }

// Dispatcher enqueues a message for at-least-once asynchronous
// processing. Handlers receive it as an explicit collaborator.
type Dispatcher interface {
	Dispatch(msg Message) error
}

// QueueDispatcher persists messages into the sqlite-backed queue the
// delivery worker polls.
type QueueDispatcher struct {
	db *db.DB
}

func NewQueueDispatcher(database *db.DB) *QueueDispatcher {
	return &QueueDispatcher{db: database}
}

func (d *QueueDispatcher) Dispatch(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.Kind(), err)
	}

	return d.db.EnqueueMessage(&domain.QueueMessage{
		Id:   uuid.New(),
		Kind: msg.Kind(),
		Body: string(body),
	})
}
