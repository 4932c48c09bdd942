package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved link belonging to a local user. Instance marks
// the source instance for bookmarks that arrived via federation;
// locally created bookmarks leave it empty.
type Bookmark struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Url       string
	Title     string
	Instance  string
	CreatedAt time.Time
	Tags      []Tag
	MainImage *FileObject
	Archive   *FileObject
}

func (b *Bookmark) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUrl: %s \n\tTitle: %s \n\tCreatedAt: %s)", b.Id, b.Url, b.Title, b.CreatedAt)
}

// Tag is a user tag on a bookmark. Only public tags ever appear in
// federated payloads.
type Tag struct {
	Id     uuid.UUID
	Name   string
	Slug   string
	Public bool
}

// FileObject is a stored file attached to a bookmark, either the cover
// image or the archived copy.
type FileObject struct {
	Id       uuid.UUID
	FilePath string
	Mime     string
}
