package activitypub

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/util"
	"github.com/microcosm-cc/bluemonday"
)

// Builder maps domain entities to ActivityStreams objects and back.
// Pure transformations: the only inputs are the entities passed in.
type Builder struct {
	urls              *URLBuilder
	baseURI           string
	storagePublicPath string
	strip             *bluemonday.Policy
}

func NewBuilder(conf *util.AppConfig) *Builder {
	return &Builder{
		urls:              NewURLBuilder(conf),
		baseURI:           conf.BaseURI(),
		storagePublicPath: conf.Conf.StoragePublicPath,
		strip:             bluemonday.StrictPolicy(),
	}
}

// BuildNote renders a bookmark as a Note. The content body wraps the
// bookmark link with its scheme split into an invisible span, followed
// by one hashtag anchor per public tag. cc lists the follower actor
// URIs in the order given; private tags never appear anywhere in the
// payload.
func (b *Builder) BuildNote(bookmark *domain.Bookmark, owner *domain.Actor, followers []*domain.Actor) *NoteObject {
	scheme := ""
	if parsed, err := url.Parse(bookmark.Url); err == nil && parsed.Scheme != "" {
		scheme = parsed.Scheme + "://"
	}
	urlVisible := strings.TrimPrefix(bookmark.Url, scheme)

	id := b.urls.Bookmark(owner.Username, bookmark.Id.String())
	content := fmt.Sprintf(`<p>%s <a href="%s" target="_blank" rel="nofollow noopener noreferrer"><span class="invisible">%s</span><span class=">%s</span></a>`,
		bookmark.Title, bookmark.Url, scheme, urlVisible)

	note := &NoteObject{
		Type:         "Note",
		Id:           id,
		Url:          id,
		AtomUri:      id,
		Published:    bookmark.CreatedAt.Format(time.RFC3339),
		AttributedTo: owner.URI,
		To:           []string{PublicURL},
	}

	cc := []string{}
	for _, follower := range followers {
		cc = append(cc, follower.URI)
	}
	note.Cc = cc

	attachments := []DocumentObject{}
	if mainImage := bookmark.MainImage; mainImage != nil {
		attachments = append(attachments, DocumentObject{
			Type:      "Document",
			Url:       b.baseURI + b.storagePublicPath + "/" + mainImage.FilePath,
			MediaType: mainImage.Mime,
			Name:      "Bookmark Cover",
		})
	}
	if archive := bookmark.Archive; archive != nil {
		attachments = append(attachments, DocumentObject{
			Type:      "Document",
			Url:       b.baseURI + b.storagePublicPath + "/" + archive.FilePath,
			MediaType: archive.Mime,
			Name:      "Bookmark Archive",
		})
	}
	note.Attachment = attachments

	hashtags := []HashtagObject{}
	for _, tag := range bookmark.Tags {
		if !tag.Public {
			continue
		}
		tagUrl := b.urls.TagPermalink(owner.Username, tag.Slug)
		hashtags = append(hashtags, HashtagObject{
			Type: "Hashtag",
			Href: tagUrl,
			Name: "#" + tag.Name,
		})
		content += fmt.Sprintf(`<a href="%s" target="_blank" rel="nofollow noopener noreferrer tag" class="mention hashtag">#<span>%s</span></a>`,
			tagUrl, tag.Name)
	}
	note.Tags = hashtags

	note.Content = content + "</p>"

	return note
}

// BuildCreate wraps the Note of a bookmark in a Create activity.
func (b *Builder) BuildCreate(bookmark *domain.Bookmark, owner *domain.Actor, followers []*domain.Actor) *CreateNoteActivity {
	note := b.BuildNote(bookmark, owner, followers)

	return &CreateNoteActivity{
		Context:   ExtendedContext(),
		Type:      "Create",
		Id:        note.Id,
		Actor:     owner.URI,
		Published: note.Published,
		To:        []string{PublicURL},
		Cc:        note.Cc,
		Object:    note,
	}
}

// BuildFollow renders a following edge as a Follow activity. The id is
// the owner's following collection URL suffixed with the edge id, which
// keeps it deterministic across retries.
func (b *Builder) BuildFollow(following *domain.Following, owner *domain.Actor, target *domain.Actor) *FollowActivity {
	return &FollowActivity{
		Context: ContextURL,
		Type:    "Follow",
		Id:      b.urls.Following(owner.Username) + "#" + following.Id.String(),
		Actor:   owner.URI,
		Object:  target.URI,
	}
}

var hrefRegex = regexp.MustCompile(`href="([^"]+)"`)

// ParseNote extracts a bookmark draft from an inbound Note: the first
// href attribute is the url, the text before the first anchor tag is
// the title (tags stripped, whitespace trimmed). Both are mandatory;
// anything less is ErrMalformedNote. Tag and attachment reconciliation
// is deliberately left out, inbound hashtags and documents are dropped.
func (b *Builder) ParseNote(note *NoteObject) (*domain.Bookmark, error) {
	content := note.Content

	hrefs := hrefRegex.FindStringSubmatch(content)
	if hrefs == nil {
		return nil, fmt.Errorf("%w: did not find an url in note content", ErrMalformedNote)
	}

	anchorIdx := strings.Index(content, "<a ")
	if anchorIdx < 0 {
		return nil, fmt.Errorf("%w: did not find a title in note content", ErrMalformedNote)
	}

	title := b.strip.Sanitize(content[:anchorIdx])
	title = strings.TrimSpace(html.UnescapeString(title))
	if len(title) == 0 {
		return nil, fmt.Errorf("%w: did not find a title in note content", ErrMalformedNote)
	}

	return &domain.Bookmark{
		Url:      hrefs[1],
		Title:    title,
		Instance: "",
	}, nil
}
