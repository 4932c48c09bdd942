package web

import (
	"fmt"
	"strings"

	"github.com/bookmarkhive/hive/activitypub"
)

// Webfinger builds the JRD discovery document for a local user. The
// resource must be "acct:user" or "acct:user@domain" with the instance
// domain; anything else is a lookup failure.
func (s *Server) Webfinger(resource string) (*activitypub.WebFinger, error) {
	if !strings.HasPrefix(resource, "acct:") {
		return nil, fmt.Errorf("unsupported resource %q", resource)
	}

	username := strings.TrimPrefix(resource, "acct:")
	username = strings.TrimSuffix(username, "@"+s.conf.Conf.Domain)
	if strings.Contains(username, "@") {
		return nil, fmt.Errorf("resource %q does not belong to this instance", resource)
	}

	actor, err := s.database.FindLocalActorByUsername(username)
	if err != nil {
		return nil, err
	}

	return &activitypub.WebFinger{
		Subject: fmt.Sprintf("acct:%s@%s", actor.Username, s.conf.Conf.Domain),
		Aliases: []string{actor.URI},
		Links: []activitypub.WebFingerLink{
			{
				Rel:  "http://webfinger.net/rel/profile-page",
				Type: "text/html",
				Href: actor.URI,
			},
			{
				Rel:  "self",
				Type: activitypub.ContentTypeActivity,
				Href: actor.URI,
			},
		},
	}, nil
}
