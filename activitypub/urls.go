package activitypub

import (
	"fmt"

	"github.com/bookmarkhive/hive/util"
)

// URLBuilder derives the public URLs of this instance from the
// configured domain. The profile URL doubles as the actor URI.
type URLBuilder struct {
	baseURI string
}

func NewURLBuilder(conf *util.AppConfig) *URLBuilder {
	return &URLBuilder{baseURI: conf.BaseURI()}
}

func (u *URLBuilder) Profile(username string) string {
	return fmt.Sprintf("%s/profile/%s", u.baseURI, username)
}

// Bookmark is the Note id of a bookmark: the profile URL with the
// bookmark id as query parameter.
func (u *URLBuilder) Bookmark(username string, id string) string {
	return fmt.Sprintf("%s/profile/%s?id=%s", u.baseURI, username, id)
}

// TagPermalink points at the owner's bookmark collection filtered by a
// tag slug.
func (u *URLBuilder) TagPermalink(username string, slug string) string {
	return fmt.Sprintf("%s/profile/%s/bookmarks?tags=%s", u.baseURI, username, slug)
}

func (u *URLBuilder) Inbox(username string) string {
	return fmt.Sprintf("%s/ap/u/%s/inbox", u.baseURI, username)
}

func (u *URLBuilder) Outbox(username string) string {
	return fmt.Sprintf("%s/ap/u/%s/outbox", u.baseURI, username)
}

func (u *URLBuilder) Followers(username string) string {
	return fmt.Sprintf("%s/ap/u/%s/followers", u.baseURI, username)
}

func (u *URLBuilder) Following(username string) string {
	return fmt.Sprintf("%s/ap/u/%s/following", u.baseURI, username)
}

func (u *URLBuilder) SharedInbox() string {
	return fmt.Sprintf("%s/ap/inbox", u.baseURI)
}
