package web

import (
	"fmt"
	"net/http"

	"github.com/bookmarkhive/hive/activitypub"
	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/metrics"
	"github.com/bookmarkhive/hive/util"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Store is the persistence surface the web layer reads from. *db.DB
// satisfies it.
type Store interface {
	FindLocalActorByUsername(username string) (*domain.Actor, error)
	FindActorByURI(uri string) (*domain.Actor, error)
	FindActorById(id uuid.UUID) (*domain.Actor, error)
	ReadUserByUsername(username string) (error, *domain.User)
	ReadBookmarkById(id uuid.UUID) (error, *domain.Bookmark)
	ReadBookmarksByUserId(userId uuid.UUID) (error, *[]domain.Bookmark)
	ReadRecentBookmarks(limit int) (error, *[]domain.Bookmark)
	ReadFollowersByOwnerId(ownerId uuid.UUID) (error, *[]domain.Follower)
	ReadFollowingsByActorId(actorId uuid.UUID) (error, *[]domain.Following)
	CreateBookmark(bookmark *domain.Bookmark) error
}

// Server binds the federation responders to their collaborators. All
// dependencies are passed in, nothing is reached through globals.
type Server struct {
	conf       *util.AppConfig
	database   Store
	builder    *activitypub.Builder
	urls       *activitypub.URLBuilder
	resolver   activitypub.ActorResolver
	dispatcher activitypub.Dispatcher
	collector  *metrics.Collector
}

func NewServer(conf *util.AppConfig, database Store, builder *activitypub.Builder,
	urls *activitypub.URLBuilder, resolver activitypub.ActorResolver,
	dispatcher activitypub.Dispatcher, collector *metrics.Collector) *Server {
	return &Server{
		conf:       conf,
		database:   database,
		builder:    builder,
		urls:       urls,
		resolver:   resolver,
		dispatcher: dispatcher,
		collector:  collector,
	}
}

// Router assembles the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))

	// RSS Feed
	g.GET("/feed", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		rss, err := s.GetRSS(c.Query("username"))
		if err != nil {
			c.String(http.StatusNotFound, "")
		} else {
			c.String(http.StatusOK, "%s", rss)
		}
	})

	g.GET("/metrics", gin.WrapH(s.collector.Handler()))

	if s.conf.Conf.WithFederation {
		// Stricter rate limit for federation endpoints: 5 req/sec per IP
		fedLimiter := NewRateLimiter(rate.Limit(5), 10)

		// Max 1MB request body size for activities
		maxBodySize := MaxBytesMiddleware(1 * 1024 * 1024)

		// Actor profile, doubling as Note responder when ?id= is set
		g.GET("/profile/:username", func(c *gin.Context) {
			c.Header("Content-Type", "application/activity+json; charset=utf-8")

			username := c.Param("username")
			if idStr := c.Query("id"); idStr != "" {
				id, err := uuid.Parse(idStr)
				if err != nil {
					c.JSON(http.StatusNotFound, gin.H{"error": "Invalid bookmark ID"})
					return
				}
				note, err := s.BookmarkNote(username, id)
				if err != nil {
					c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
					return
				}
				c.JSON(http.StatusOK, note)
				return
			}

			person, err := s.ActorProfile(username)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusOK, person)
		})

		g.POST("/ap/u/:username/inbox", RateLimitMiddleware(fedLimiter), maxBodySize, func(c *gin.Context) {
			log.Debug("POST inbox", "username", c.Param("username"))
			s.HandleInbox(c)
		})

		g.POST("/ap/inbox", RateLimitMiddleware(fedLimiter), maxBodySize, func(c *gin.Context) {
			log.Debug("POST shared inbox")
			s.HandleInbox(c)
		})

		g.GET("/ap/u/:username/outbox", func(c *gin.Context) {
			s.serveCollection(c, s.urls.Outbox(c.Param("username")))
		})

		g.GET("/ap/u/:username/followers", func(c *gin.Context) {
			s.serveCollection(c, s.urls.Followers(c.Param("username")))
		})

		g.GET("/ap/u/:username/following", func(c *gin.Context) {
			s.serveCollection(c, s.urls.Following(c.Param("username")))
		})

		g.GET("/.well-known/webfinger", func(c *gin.Context) {
			c.Header("Content-Type", activitypub.ContentTypeJrd)

			jrd, err := s.Webfinger(c.Query("resource"))
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
				return
			}
			c.JSON(http.StatusOK, jrd)
		})
	}

	return g
}

// serveCollection answers a collection endpoint with a structurally
// valid empty collection; the user must exist.
func (s *Server) serveCollection(c *gin.Context, collectionId string) {
	c.Header("Content-Type", "application/activity+json; charset=utf-8")

	if _, err := s.database.FindLocalActorByUsername(c.Param("username")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, activitypub.EmptyCollection(collectionId))
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	log.Info("Starting federation server", "host", s.conf.Conf.Host, "port", s.conf.Conf.HttpPort)
	return s.Router().Run(fmt.Sprintf(":%d", s.conf.Conf.HttpPort))
}
