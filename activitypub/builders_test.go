package activitypub

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/util"
	"github.com/google/uuid"
)

func testConfig() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.Domain = "hive.example"
	conf.Conf.StoragePublicPath = "/storage"
	return conf
}

func testOwner() *domain.Actor {
	ownerId := uuid.New()
	return &domain.Actor{
		Id:           uuid.New(),
		OwnerId:      &ownerId,
		Username:     "alice",
		Domain:       "hive.example",
		URI:          "https://hive.example/profile/alice",
		FollowingURL: "https://hive.example/ap/u/alice/following",
	}
}

func testBookmark() *domain.Bookmark {
	return &domain.Bookmark{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Url:       "https://golang.org/doc",
		Title:     "Go Documentation",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildNoteContent(t *testing.T) {
	builder := NewBuilder(testConfig())
	bookmark := testBookmark()
	owner := testOwner()

	note := builder.BuildNote(bookmark, owner, nil)

	if note.Type != "Note" {
		t.Errorf("Expected type Note, got %s", note.Type)
	}

	expectedId := "https://hive.example/profile/alice?id=" + bookmark.Id.String()
	if note.Id != expectedId {
		t.Errorf("Expected id %s, got %s", expectedId, note.Id)
	}
	if note.Url != expectedId || note.AtomUri != expectedId {
		t.Error("url and atomUri should equal the note id")
	}

	if note.AttributedTo != owner.URI {
		t.Errorf("Expected attributedTo %s, got %s", owner.URI, note.AttributedTo)
	}

	if len(note.To) != 1 || note.To[0] != PublicURL {
		t.Errorf("Note should be addressed to the public collection, got %v", note.To)
	}

	if !strings.Contains(note.Content, "Go Documentation") {
		t.Error("Content should contain the bookmark title")
	}
	if !strings.Contains(note.Content, `<a href="https://golang.org/doc"`) {
		t.Error("Content should link the bookmark url")
	}
	if !strings.Contains(note.Content, `<span class="invisible">https://</span>`) {
		t.Error("Content should hide the url scheme in an invisible span")
	}
	if !strings.Contains(note.Content, "golang.org/doc</span>") {
		t.Error("Content should show the url without its scheme")
	}
	if !strings.HasSuffix(note.Content, "</p>") {
		t.Error("Content should be a closed paragraph")
	}
}

func TestBuildNoteFollowerOrder(t *testing.T) {
	builder := NewBuilder(testConfig())

	followers := []*domain.Actor{
		{URI: "https://a.example/users/one"},
		{URI: "https://b.example/users/two"},
		{URI: "https://c.example/users/three"},
	}

	note := builder.BuildNote(testBookmark(), testOwner(), followers)

	if len(note.Cc) != 3 {
		t.Fatalf("Expected 3 cc entries, got %d", len(note.Cc))
	}
	for i, follower := range followers {
		if note.Cc[i] != follower.URI {
			t.Errorf("cc[%d] should be %s, got %s", i, follower.URI, note.Cc[i])
		}
	}
}

func TestBuildNotePublicTagsOnly(t *testing.T) {
	builder := NewBuilder(testConfig())
	bookmark := testBookmark()
	bookmark.Tags = []domain.Tag{
		{Name: "golang", Slug: "golang", Public: true},
		{Name: "secret", Slug: "secret", Public: false},
		{Name: "docs", Slug: "docs", Public: true},
	}

	note := builder.BuildNote(bookmark, testOwner(), nil)

	if len(note.Tags) != 2 {
		t.Fatalf("Expected 2 hashtags, got %d", len(note.Tags))
	}
	if note.Tags[0].Name != "#golang" || note.Tags[1].Name != "#docs" {
		t.Errorf("Hashtags should keep tag order, got %v", note.Tags)
	}

	if strings.Contains(note.Content, "secret") {
		t.Error("Private tags must not appear in the content")
	}

	payload, err := json.Marshal(note)
	if err != nil {
		t.Fatalf("Failed to marshal note: %v", err)
	}
	if strings.Contains(string(payload), "secret") {
		t.Error("Private tags must not appear anywhere in the payload")
	}

	expectedHref := "https://hive.example/profile/alice/bookmarks?tags=golang"
	if note.Tags[0].Href != expectedHref {
		t.Errorf("Expected tag href %s, got %s", expectedHref, note.Tags[0].Href)
	}
}

func TestBuildNoteAttachments(t *testing.T) {
	builder := NewBuilder(testConfig())
	bookmark := testBookmark()
	bookmark.MainImage = &domain.FileObject{FilePath: "covers/abc.png", Mime: "image/png"}
	bookmark.Archive = &domain.FileObject{FilePath: "archives/abc.html", Mime: "text/html"}

	note := builder.BuildNote(bookmark, testOwner(), nil)

	if len(note.Attachment) != 2 {
		t.Fatalf("Expected 2 attachments, got %d", len(note.Attachment))
	}

	cover := note.Attachment[0]
	if cover.Name != "Bookmark Cover" {
		t.Errorf("Expected cover attachment first, got %s", cover.Name)
	}
	if cover.Url != "https://hive.example/storage/covers/abc.png" {
		t.Errorf("Unexpected cover url %s", cover.Url)
	}
	if cover.MediaType != "image/png" {
		t.Errorf("Unexpected cover media type %s", cover.MediaType)
	}

	archive := note.Attachment[1]
	if archive.Name != "Bookmark Archive" {
		t.Errorf("Expected archive attachment second, got %s", archive.Name)
	}
}

func TestBuildCreate(t *testing.T) {
	builder := NewBuilder(testConfig())
	bookmark := testBookmark()
	owner := testOwner()
	followers := []*domain.Actor{{URI: "https://a.example/users/one"}}

	create := builder.BuildCreate(bookmark, owner, followers)

	if create.Type != "Create" {
		t.Errorf("Expected type Create, got %s", create.Type)
	}
	if create.Actor != owner.URI {
		t.Errorf("Expected actor %s, got %s", owner.URI, create.Actor)
	}
	if create.Id != create.Object.Id {
		t.Error("Create id should match the note id")
	}
	if create.Published != create.Object.Published {
		t.Error("Create published should match the note")
	}
	if len(create.Cc) != 1 || create.Cc[0] != "https://a.example/users/one" {
		t.Errorf("Create cc should match the note cc, got %v", create.Cc)
	}

	context, ok := create.Context.([]interface{})
	if !ok || len(context) != 2 {
		t.Fatalf("Create should carry the extended context, got %v", create.Context)
	}
	if context[0] != ContextURL {
		t.Errorf("First context entry should be %s", ContextURL)
	}
}

func TestBuildFollow(t *testing.T) {
	builder := NewBuilder(testConfig())
	owner := testOwner()
	target := &domain.Actor{URI: "https://remote.example/users/bob"}
	following := &domain.Following{Id: uuid.New(), ActorId: uuid.New()}

	follow := builder.BuildFollow(following, owner, target)

	expectedId := owner.FollowingURL + "#" + following.Id.String()
	if follow.Id != expectedId {
		t.Errorf("Expected follow id %s, got %s", expectedId, follow.Id)
	}
	if follow.Actor != owner.URI {
		t.Errorf("Expected actor %s, got %s", owner.URI, follow.Actor)
	}
	if follow.Object != target.URI {
		t.Errorf("Expected object %s, got %s", target.URI, follow.Object)
	}
	if follow.Context != ContextURL {
		t.Errorf("Follow should use the plain context, got %v", follow.Context)
	}
}

func TestParseNoteRoundTrip(t *testing.T) {
	builder := NewBuilder(testConfig())
	bookmark := testBookmark()

	note := builder.BuildNote(bookmark, testOwner(), nil)

	parsed, err := builder.ParseNote(note)
	if err != nil {
		t.Fatalf("ParseNote failed: %v", err)
	}

	if parsed.Url != bookmark.Url {
		t.Errorf("Expected url %s, got %s", bookmark.Url, parsed.Url)
	}
	if parsed.Title != bookmark.Title {
		t.Errorf("Expected title %q, got %q", bookmark.Title, parsed.Title)
	}
}

func TestParseNoteNoUrl(t *testing.T) {
	builder := NewBuilder(testConfig())
	note := &NoteObject{Content: "<p>just text, no anchor</p>"}

	_, err := builder.ParseNote(note)
	if !errors.Is(err, ErrMalformedNote) {
		t.Errorf("Expected ErrMalformedNote, got %v", err)
	}
}

func TestParseNoteNoTitle(t *testing.T) {
	builder := NewBuilder(testConfig())
	note := &NoteObject{Content: `<p><a href="https://example.com">link only</a></p>`}

	_, err := builder.ParseNote(note)
	if !errors.Is(err, ErrMalformedNote) {
		t.Errorf("Expected ErrMalformedNote, got %v", err)
	}
}

func TestParseNoteUnescapesTitle(t *testing.T) {
	builder := NewBuilder(testConfig())
	note := &NoteObject{Content: `<p>Tips &amp; Tricks <a href="https://example.com/tips">example.com</a></p>`}

	parsed, err := builder.ParseNote(note)
	if err != nil {
		t.Fatalf("ParseNote failed: %v", err)
	}
	if parsed.Title != "Tips & Tricks" {
		t.Errorf("Expected unescaped title, got %q", parsed.Title)
	}
	if parsed.Url != "https://example.com/tips" {
		t.Errorf("Expected first href as url, got %s", parsed.Url)
	}
}
