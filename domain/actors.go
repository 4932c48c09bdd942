package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor represents a federation participant, local or remote. A local
// actor carries an OwnerId pointing at the owning user plus private key
// material; a remote actor has neither. The URI is the stable identity
// and never changes once assigned.
type Actor struct {
	Id            uuid.UUID
	OwnerId       *uuid.UUID // nil for remote actors
	Username      string
	Domain        string
	URI           string
	InboxURL      string
	OutboxURL     string
	SharedInbox   string
	FollowersURL  string
	FollowingURL  string
	PublicKeyPem  string
	PrivateKeyPem string // local actors only
	KeyId         string // e.g. "https://hive.example/profile/alice#main-key"
	CreatedAt     time.Time
	LastFetchedAt time.Time
}

// IsLocal reports whether the actor belongs to a user on this instance.
func (a *Actor) IsLocal() bool {
	return a.OwnerId != nil
}

// User is a registered local user owning exactly one local actor.
type User struct {
	Id        uuid.UUID
	Username  string
	CreatedAt time.Time
}
