package web

import (
	"fmt"
	"time"

	"github.com/bookmarkhive/hive/activitypub"
	"github.com/bookmarkhive/hive/domain"
	"github.com/google/uuid"
)

const securityContextURL = "https://w3id.org/security/v1"

// ActorProfile builds the Person document served for a local user.
func (s *Server) ActorProfile(username string) (*activitypub.PersonActor, error) {
	actor, err := s.database.FindLocalActorByUsername(username)
	if err != nil {
		return nil, err
	}

	return &activitypub.PersonActor{
		Context:           []interface{}{activitypub.ContextURL, securityContextURL},
		Id:                actor.URI,
		Type:              "Person",
		Name:              actor.Username,
		PreferredUsername: actor.Username,
		Url:               actor.URI,
		Published:         actor.CreatedAt.Format(time.RFC3339),
		Inbox:             actor.InboxURL,
		Outbox:            actor.OutboxURL,
		Following:         actor.FollowingURL,
		Followers:         actor.FollowersURL,
		PublicKey: activitypub.PersonActorPublicKey{
			Id:           actor.KeyId,
			Owner:        actor.URI,
			PublicKeyPem: actor.PublicKeyPem,
		},
		Endpoints: &activitypub.PersonActorEndpoints{
			SharedInbox: s.urls.SharedInbox(),
		},
	}, nil
}

// BookmarkNote renders one of a user's bookmarks as a Note. The id must
// belong to the named user; a mismatch behaves like a missing bookmark.
func (s *Server) BookmarkNote(username string, id uuid.UUID) (*activitypub.NoteObject, error) {
	actor, err := s.database.FindLocalActorByUsername(username)
	if err != nil {
		return nil, err
	}

	err, bookmark := s.database.ReadBookmarkById(id)
	if err != nil {
		return nil, err
	}

	if actor.OwnerId == nil || bookmark.UserId != *actor.OwnerId {
		return nil, fmt.Errorf("bookmark %s does not belong to %s", id, username)
	}

	followers, err := s.followerActors(*actor.OwnerId)
	if err != nil {
		return nil, err
	}

	return s.builder.BuildNote(bookmark, actor, followers), nil
}

// followerActors loads the actors behind a user's follower edges, in
// insertion order.
func (s *Server) followerActors(ownerId uuid.UUID) ([]*domain.Actor, error) {
	err, edges := s.database.ReadFollowersByOwnerId(ownerId)
	if err != nil {
		return nil, err
	}

	actors := []*domain.Actor{}
	for _, edge := range *edges {
		actor, err := s.database.FindActorById(edge.ActorId)
		if err != nil {
			continue
		}
		actors = append(actors, actor)
	}
	return actors, nil
}
