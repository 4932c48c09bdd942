package domain

import (
	"time"

	"github.com/google/uuid"
)

// Following is a directed edge from a local user to an actor they
// follow. At most one edge exists per (owner, actor) pair.
type Following struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID // local user
	ActorId   uuid.UUID // followed actor
	CreatedAt time.Time
}

// Follower is the reverse edge: a remote actor following a local user.
type Follower struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID // local user being followed
	ActorId   uuid.UUID // remote follower
	CreatedAt time.Time
}
