package activitypub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/metrics"
	"github.com/google/uuid"
)

// FollowStore is the persistence surface for follow edges.
type FollowStore interface {
	FindFollowingById(id uuid.UUID) (*domain.Following, error)
	SaveFollower(follower *domain.Follower) error
}

// ActorResolver resolves identifiers to actors, see Resolver.
type ActorResolver interface {
	Resolve(identifier string) (*domain.Actor, error)
}

// Handlers processes queue messages. All collaborators are explicit;
// a handler is a function of (message, collaborators) with the only
// side effects being domain writes and outbound deliveries.
type Handlers struct {
	actors     ActorStore
	follows    FollowStore
	resolver   ActorResolver
	dispatcher Dispatcher
	builder    *Builder
	client     *http.Client
	collector  *metrics.Collector
}

func NewHandlers(actors ActorStore, follows FollowStore, resolver ActorResolver,
	dispatcher Dispatcher, builder *Builder, client *http.Client, collector *metrics.Collector) *Handlers {
	return &Handlers{
		actors:     actors,
		follows:    follows,
		resolver:   resolver,
		dispatcher: dispatcher,
		builder:    builder,
		client:     client,
		collector:  collector,
	}
}

// HandleSendFollow builds the Follow activity for a stored following
// edge and hands it to the generic send path. Missing entities mean the
// edge was removed since the message was enqueued; that is permanent.
func (h *Handlers) HandleSendFollow(msg SendFollowMessage) error {
	following, err := h.follows.FindFollowingById(msg.FollowingId)
	if err != nil {
		return Unrecoverablef("no following entity matching %s", msg.FollowingId)
	}

	owner, err := h.actors.FindActorByOwnerId(following.OwnerId)
	if err != nil {
		return Unrecoverablef("no actor for owner %s", following.OwnerId)
	}

	target, err := h.actors.FindActorById(following.ActorId)
	if err != nil {
		return Unrecoverablef("no target actor %s", following.ActorId)
	}

	if target.InboxURL == "" {
		return Unrecoverablef("no inbox url for actor %s", target.URI)
	}

	follow := h.builder.BuildFollow(following, owner, target)
	payload, err := json.Marshal(follow)
	if err != nil {
		return Unrecoverable(err)
	}

	return h.dispatcher.Dispatch(&SendMessage{
		Payload:  payload,
		InboxURL: target.InboxURL,
		ActorURI: owner.URI,
	})
}

// HandleSend signs the payload as the local actor behind ActorURI and
// POSTs it. A non-2xx response stays retryable; the queue's backoff
// policy decides when to give up.
func (h *Handlers) HandleSend(msg SendMessage) error {
	actor, err := h.actors.FindActorByURI(msg.ActorURI)
	if err != nil {
		return Unrecoverablef("no actor for uri %s", msg.ActorURI)
	}

	if actor.PrivateKeyPem == "" {
		return Unrecoverable(fmt.Errorf("%w for actor %s", ErrMissingKey, actor.URI))
	}

	privateKey, err := ParsePrivateKey(actor.PrivateKeyPem)
	if err != nil {
		return Unrecoverable(err)
	}

	headers, err := SignedHeaders(msg.InboxURL, actor.KeyId, privateKey, msg.Payload)
	if err != nil {
		return Unrecoverable(err)
	}

	if err := h.post(msg.InboxURL, msg.Payload, headers); err != nil {
		h.collector.RecordDeliveryFailure()
		return err
	}

	h.collector.RecordDeliverySuccess()
	return nil
}

// HandleReceiveFollow persists the follower edge for an inbound Follow
// and answers with a signed Accept. The Accept is posted directly
// instead of going back through the queue; a failed Accept surfaces as
// a hard error for the operator.
func (h *Handlers) HandleReceiveFollow(msg ReceiveFollowMessage) error {
	var follow FollowActivity
	if err := json.Unmarshal(msg.Payload, &follow); err != nil {
		return Unrecoverable(fmt.Errorf("failed to parse Follow activity: %w", err))
	}

	requester, err := h.resolveStrict(follow.Actor)
	if err != nil {
		return err
	}

	object, err := h.resolveStrict(follow.Object)
	if err != nil {
		return err
	}

	if object.OwnerId == nil {
		return Unrecoverablef("no user matching object %s", follow.Object)
	}

	follower := &domain.Follower{
		OwnerId: *object.OwnerId,
		ActorId: requester.Id,
	}
	if err := h.follows.SaveFollower(follower); err != nil {
		return fmt.Errorf("failed to save follower: %w", err)
	}

	if requester.InboxURL == "" {
		return Unrecoverablef("no inbox url for actor %s", requester.URI)
	}

	if object.PrivateKeyPem == "" {
		return Unrecoverable(fmt.Errorf("%w for actor %s", ErrMissingKey, object.URI))
	}

	privateKey, err := ParsePrivateKey(object.PrivateKeyPem)
	if err != nil {
		return Unrecoverable(err)
	}

	accept := &AcceptFollowActivity{
		Context: ContextURL,
		Type:    "Accept",
		Actor:   object.URI,
		Object:  &follow,
	}
	payload, err := json.Marshal(accept)
	if err != nil {
		return Unrecoverable(err)
	}

	headers, err := SignedHeaders(requester.InboxURL, object.KeyId, privateKey, payload)
	if err != nil {
		return Unrecoverable(err)
	}

	if err := h.post(requester.InboxURL, payload, headers); err != nil {
		h.collector.RecordDeliveryFailure()
		return fmt.Errorf("error when sending the Accept Follow activity: %w", err)
	}

	h.collector.RecordDeliverySuccess()
	return nil
}

// resolveStrict resolves an identifier, translating permanent
// resolution failures into unrecoverable handler errors while leaving
// transient network errors retryable.
func (h *Handlers) resolveStrict(identifier string) (*domain.Actor, error) {
	actor, err := h.resolver.Resolve(identifier)
	if err != nil {
		if IsUnrecoverable(err) {
			return nil, err
		}
		if errors.Is(err, ErrActorUnresolvable) {
			return nil, Unrecoverable(err)
		}
		return nil, err
	}
	return actor, nil
}

func (h *Handlers) post(inboxURL string, payload []byte, headers http.Header) error {
	req, err := http.NewRequest("POST", inboxURL, bytes.NewReader(payload))
	if err != nil {
		return Unrecoverable(err)
	}
	req.Header = headers
	req.Header.Set("User-Agent", userAgent())

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote server returned status: %d", resp.StatusCode)
	}

	return nil
}
