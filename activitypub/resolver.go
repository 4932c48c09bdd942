package activitypub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/metrics"
	"github.com/google/uuid"
)

// ActorStore is the persistence surface the federation core needs for
// actors. Lookups return an error when no row matches.
type ActorStore interface {
	FindActorByURI(uri string) (*domain.Actor, error)
	FindActorByHandle(username string, domain string) (*domain.Actor, error)
	FindActorById(id uuid.UUID) (*domain.Actor, error)
	FindActorByOwnerId(ownerId uuid.UUID) (*domain.Actor, error)
	SaveActor(actor *domain.Actor) error
	UpdateActor(actor *domain.Actor) error
}

// actorRefreshInterval is how long a cached remote profile is served
// without re-fetching.
const actorRefreshInterval = 24 * time.Hour

// Resolver resolves an identifier, either a canonical URI or a
// "@user@host" handle, to a persisted actor. Already known actors are
// answered from the store without network traffic; unknown ones are
// fetched, validated and persisted, and stale ones are refreshed.
type Resolver struct {
	store     ActorStore
	client    *http.Client
	collector *metrics.Collector
}

func NewResolver(store ActorStore, client *http.Client, collector *metrics.Collector) *Resolver {
	return &Resolver{store: store, client: client, collector: collector}
}

func (r *Resolver) Resolve(identifier string) (*domain.Actor, error) {
	if strings.HasPrefix(identifier, "@") {
		return r.resolveHandle(identifier)
	}
	return r.resolveURI(identifier)
}

// resolveHandle resolves "@user@host". A cached actor under that
// handle short-circuits discovery entirely; only unknown or stale
// handles hit the network.
func (r *Resolver) resolveHandle(handle string) (*domain.Actor, error) {
	parts := strings.Split(strings.TrimPrefix(handle, "@"), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: malformed handle %q", ErrActorUnresolvable, handle)
	}
	user, host := parts[0], parts[1]

	if cached, err := r.store.FindActorByHandle(user, host); err == nil && cached != nil {
		if r.isFresh(cached) {
			return cached, nil
		}
	}

	uri, err := r.webfingerLookup(user, host)
	if err != nil {
		return nil, err
	}
	return r.resolveURI(uri)
}

// webfingerLookup maps user and host to the canonical profile URI via
// the host's webfinger endpoint.
func (r *Resolver) webfingerLookup(user string, host string) (string, error) {
	endpoint := fmt.Sprintf("https://%s/.well-known/webfinger?resource=%s",
		host, url.QueryEscape(fmt.Sprintf("acct:%s@%s", user, host)))

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrActorUnresolvable, err)
	}
	req.Header.Set("Accept", "application/jrd+json")
	req.Header.Set("User-Agent", userAgent())

	resp, err := r.client.Do(req)
	if err != nil {
		// transport failures are transient, leave them retryable
		return "", fmt.Errorf("webfinger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: webfinger returned status %d for %s@%s", ErrActorUnresolvable, resp.StatusCode, user, host)
	}

	var jrd WebFinger
	if err := json.NewDecoder(resp.Body).Decode(&jrd); err != nil {
		return "", fmt.Errorf("%w: failed to parse webfinger document: %s", ErrActorUnresolvable, err)
	}

	for _, link := range jrd.Links {
		if link.Rel == "self" && link.Type == ContentTypeActivity && link.Href != "" {
			return link.Href, nil
		}
	}

	return "", fmt.Errorf("%w: webfinger document for %s@%s has no self link", ErrActorUnresolvable, user, host)
}

func (r *Resolver) resolveURI(uri string) (*domain.Actor, error) {
	cached, err := r.store.FindActorByURI(uri)
	if err != nil || cached == nil {
		return r.fetchActor(uri)
	}

	if r.isFresh(cached) {
		return cached, nil
	}

	if refreshed, refreshErr := r.refreshActor(cached); refreshErr == nil {
		return refreshed, nil
	}
	// stale data beats a failed refresh
	return cached, nil
}

// isFresh reports whether a cached actor can be served without a
// profile re-fetch. Local actors are always fresh.
func (r *Resolver) isFresh(actor *domain.Actor) bool {
	return actor.IsLocal() || time.Since(actor.LastFetchedAt) < actorRefreshInterval
}

// fetchPerson fetches and validates a remote actor profile document.
// The profile must declare an inbox and a public key, otherwise the
// actor cannot take part in federation and resolution fails
// permanently.
func (r *Resolver) fetchPerson(actorURI string) (*PersonActor, error) {
	req, err := http.NewRequest("GET", actorURI, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrActorUnresolvable, err)
	}

	req.Header.Set("Accept", ContentTypeActivity)
	req.Header.Set("User-Agent", userAgent())

	r.collector.RecordActorFetch()

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: actor fetch returned status %d", ErrActorUnresolvable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read actor response: %w", err)
	}

	var person PersonActor
	if err := json.Unmarshal(body, &person); err != nil {
		return nil, fmt.Errorf("%w: failed to parse actor JSON: %s", ErrActorUnresolvable, err)
	}

	if person.Id == "" || person.Inbox == "" || person.PublicKey.PublicKeyPem == "" {
		return nil, fmt.Errorf("%w: actor profile missing required fields", ErrActorUnresolvable)
	}

	return &person, nil
}

// fetchActor fetches a remote actor profile and persists it.
func (r *Resolver) fetchActor(actorURI string) (*domain.Actor, error) {
	person, err := r.fetchPerson(actorURI)
	if err != nil {
		return nil, err
	}

	domainName, err := extractDomain(person.Id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrActorUnresolvable, err)
	}

	actor := &domain.Actor{
		Id:            uuid.New(),
		Username:      person.PreferredUsername,
		Domain:        domainName,
		URI:           person.Id,
		InboxURL:      person.Inbox,
		OutboxURL:     person.Outbox,
		SharedInbox:   sharedInboxOf(person),
		FollowersURL:  person.Followers,
		FollowingURL:  person.Following,
		PublicKeyPem:  person.PublicKey.PublicKeyPem,
		CreatedAt:     time.Now(),
		LastFetchedAt: time.Now(),
	}

	if err := r.store.SaveActor(actor); err != nil {
		// a concurrent resolution may have won the insert
		if existing, findErr := r.store.FindActorByURI(person.Id); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to store actor: %w", err)
	}

	return actor, nil
}

// refreshActor re-fetches a stale cached profile and updates the
// mutable fields in place.
func (r *Resolver) refreshActor(cached *domain.Actor) (*domain.Actor, error) {
	person, err := r.fetchPerson(cached.URI)
	if err != nil {
		return nil, err
	}

	cached.Username = person.PreferredUsername
	cached.InboxURL = person.Inbox
	cached.OutboxURL = person.Outbox
	cached.SharedInbox = sharedInboxOf(person)
	cached.FollowersURL = person.Followers
	cached.FollowingURL = person.Following
	cached.PublicKeyPem = person.PublicKey.PublicKeyPem
	cached.LastFetchedAt = time.Now()

	if err := r.store.UpdateActor(cached); err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}

	return cached, nil
}

func sharedInboxOf(person *PersonActor) string {
	if person.Endpoints != nil {
		return person.Endpoints.SharedInbox
	}
	return ""
}

// extractDomain extracts the host from an actor URI.
// Example: "https://mastodon.social/users/alice" -> "mastodon.social"
func extractDomain(actorURI string) (string, error) {
	parsed, err := url.Parse(actorURI)
	if err != nil {
		return "", fmt.Errorf("invalid actor URI: %w", err)
	}
	return parsed.Host, nil
}

func userAgent() string {
	return "hive/1.0 ActivityPub"
}
