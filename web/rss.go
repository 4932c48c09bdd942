package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/util"
	"github.com/charmbracelet/log"
	"github.com/gorilla/feeds"
)

// GetRSS renders the bookmark feed as RSS, optionally filtered by
// username.
func (s *Server) GetRSS(username string) (string, error) {

	var err error
	var bookmarks *[]domain.Bookmark
	var title string
	var author string

	link := s.conf.BaseURI() + "/feed"

	if username != "" {
		err, user := s.database.ReadUserByUsername(username)
		if err != nil {
			log.Debug("Could not find feed user", "username", username, "err", err)
			return "", errors.New("error retrieving bookmarks by username")
		}
		err, bookmarks = s.database.ReadBookmarksByUserId(user.Id)
		if err != nil || bookmarks == nil {
			log.Debug("Could not get bookmarks", "username", username, "err", err)
			return "", errors.New("error retrieving bookmarks by username")
		}
		title = fmt.Sprintf("Hive Bookmarks - %s", username)
		author = username
		link = fmt.Sprintf("%s?username=%s", link, username)
	} else {
		err, bookmarks = s.database.ReadRecentBookmarks(50)
		if err != nil || bookmarks == nil {
			log.Debug("Could not get bookmarks", "err", err)
			return "", errors.New("error retrieving bookmarks")
		}
		title = "All Hive Bookmarks"
		author = "everyone"
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "shared bookmarks",
		Author:      &feeds.Author{Name: author, Email: fmt.Sprintf("%s@%s", author, s.conf.Conf.Domain)},
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	for _, bookmark := range *bookmarks {
		feedItems = append(feedItems,
			&feeds.Item{
				Id:          bookmark.Id.String(),
				Title:       bookmark.Title,
				Link:        &feeds.Link{Href: bookmark.Url},
				Content:     bookmark.Title,
				Description: "saved " + bookmark.CreatedAt.Format(util.DateTimeFormat()),
				Created:     bookmark.CreatedAt,
			})
	}

	feed.Items = feedItems
	return feed.ToRss()
}
