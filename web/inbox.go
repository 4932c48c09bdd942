package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookmarkhive/hive/activitypub"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// HandleInbox processes an inbound activity POSTed to a user inbox or
// the shared inbox. The signature must verify against the key of the
// actor named in the activity; Follow activities are queued for
// asynchronous processing, Create activities from followed actors
// become draft bookmarks, everything else is acknowledged and dropped.
func (s *Server) HandleInbox(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var activity activitypub.InboundActivity
	if err := json.Unmarshal(body, &activity); err != nil {
		log.Debug("Inbox: failed to parse activity", "err", err)
		c.Status(http.StatusBadRequest)
		return
	}

	s.collector.RecordInboundActivity(activity.Type)

	if activity.Actor == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	sender, err := s.resolver.Resolve(activity.Actor)
	if err != nil {
		log.Debug("Inbox: could not resolve sender", "actor", activity.Actor, "err", err)
		c.Status(http.StatusUnauthorized)
		return
	}

	if err := s.verifySignature(c.Request, body, sender.URI, sender.PublicKeyPem); err != nil {
		log.Debug("Inbox: signature rejected", "actor", activity.Actor, "err", err)
		c.Status(http.StatusUnauthorized)
		return
	}

	switch activity.Type {
	case "Follow":
		if err := s.dispatcher.Dispatch(&activitypub.ReceiveFollowMessage{Payload: body}); err != nil {
			log.Error("Inbox: failed to queue Follow", "err", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusAccepted)
	case "Create":
		if err := s.handleInboundCreate(body); err != nil {
			log.Debug("Inbox: dropping Create", "err", err)
		}
		c.Status(http.StatusAccepted)
	default:
		log.Debug("Inbox: ignoring activity", "type", activity.Type)
		c.Status(http.StatusAccepted)
	}
}

// verifySignature checks the HTTP signature and the body digest against
// the sender's published key.
func (s *Server) verifySignature(req *http.Request, body []byte, senderURI string, publicKeyPem string) error {
	if digest := req.Header.Get("Digest"); digest != "" && digest != activitypub.Digest(body) {
		return fmt.Errorf("digest mismatch")
	}

	signedBy, err := activitypub.VerifyRequest(req, publicKeyPem)
	if err != nil {
		return err
	}

	if signedBy != senderURI {
		return fmt.Errorf("signature key %s does not match actor %s", signedBy, senderURI)
	}

	return nil
}

// handleInboundCreate turns a Note from a followed actor into draft
// bookmarks for every local user who follows them.
func (s *Server) handleInboundCreate(body []byte) error {
	var create activitypub.InboundCreate
	if err := json.Unmarshal(body, &create); err != nil {
		return fmt.Errorf("failed to parse Create activity: %w", err)
	}

	sender, err := s.database.FindActorByURI(create.Actor)
	if err != nil {
		return fmt.Errorf("unknown sender %s", create.Actor)
	}

	err, followings := s.database.ReadFollowingsByActorId(sender.Id)
	if err != nil {
		return err
	}
	if followings == nil || len(*followings) == 0 {
		return fmt.Errorf("no local user follows %s", create.Actor)
	}

	draft, err := s.builder.ParseNote(&create.Object)
	if err != nil {
		return err
	}
	draft.Instance = sender.Domain

	for _, following := range *followings {
		bookmark := *draft
		bookmark.UserId = following.OwnerId
		if err := s.database.CreateBookmark(&bookmark); err != nil {
			log.Error("Inbox: failed to save draft bookmark", "user", following.OwnerId, "err", err)
		}
	}

	return nil
}
