package db

import (
	"database/sql"
	"sync"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/util"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

var (
	dbInstance *DB
	dbOnce     sync.Once
)

const (
	//Users
	sqlInsertUser           = `INSERT INTO users(id, username, created_at) VALUES (?, ?, ?)`
	sqlSelectUserByUsername = `SELECT id, username, created_at FROM users WHERE username = ?`

	//Actors
	sqlInsertActor = `INSERT INTO actors(id, owner_id, username, domain, uri, inbox_url, outbox_url,
                        shared_inbox, followers_url, following_url, public_key_pem, private_key_pem,
                        key_id, created_at, last_fetched_at)
                        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlUpdateActor = `UPDATE actors SET username = ?, domain = ?, inbox_url = ?, outbox_url = ?,
                        shared_inbox = ?, followers_url = ?, following_url = ?, public_key_pem = ?,
                        last_fetched_at = ? WHERE uri = ?`
	sqlSelectActor           = `SELECT id, owner_id, username, domain, uri, inbox_url, outbox_url, shared_inbox, followers_url, following_url, public_key_pem, private_key_pem, key_id, created_at, last_fetched_at FROM actors`
	sqlSelectActorByURI      = sqlSelectActor + ` WHERE uri = ?`
	sqlSelectActorByHandle   = sqlSelectActor + ` WHERE username = ? AND domain = ?`
	sqlSelectActorById       = sqlSelectActor + ` WHERE id = ?`
	sqlSelectActorByOwnerId  = sqlSelectActor + ` WHERE owner_id = ?`
	sqlSelectActorByUsername = sqlSelectActor + ` WHERE username = ? AND owner_id IS NOT NULL`
)

// GetDB returns the process-wide database handle, opening and migrating
// the sqlite file on first use.
func GetDB() *DB {
	dbOnce.Do(func() {
		sqlDB, err := sql.Open("sqlite", util.ResolveFilePath("database.db"))
		if err != nil {
			panic(err)
		}

		// Configure connection pool for concurrent access
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)

		var journalMode string
		err = sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
		if err != nil {
			log.Warn("Failed to enable WAL mode", "err", err)
		} else {
			log.Info("Database journal mode", "mode", journalMode)
		}

		// Pragmas tuned for the concurrent delivery workload
		sqlDB.Exec("PRAGMA synchronous = NORMAL")
		sqlDB.Exec("PRAGMA cache_size = -64000")
		sqlDB.Exec("PRAGMA temp_store = MEMORY")
		sqlDB.Exec("PRAGMA busy_timeout = 5000")
		sqlDB.Exec("PRAGMA foreign_keys = ON")

		dbInstance = &DB{db: sqlDB}

		if err := dbInstance.RunMigrations(); err != nil {
			panic(err)
		}
	})

	return dbInstance
}

// CreateUser registers a local user: the user row, a fresh RSA keypair
// and the local actor row are created in one transaction.
func (db *DB) CreateUser(username string, conf *util.AppConfig) (error, *domain.User) {
	user := &domain.User{
		Id:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now(),
	}

	keypair := util.GeneratePemKeypair()
	uri := conf.BaseURI() + "/profile/" + username

	actor := &domain.Actor{
		Id:            uuid.New(),
		OwnerId:       &user.Id,
		Username:      username,
		Domain:        conf.Conf.Domain,
		URI:           uri,
		InboxURL:      conf.BaseURI() + "/ap/u/" + username + "/inbox",
		OutboxURL:     conf.BaseURI() + "/ap/u/" + username + "/outbox",
		SharedInbox:   conf.BaseURI() + "/ap/inbox",
		FollowersURL:  conf.BaseURI() + "/ap/u/" + username + "/followers",
		FollowingURL:  conf.BaseURI() + "/ap/u/" + username + "/following",
		PublicKeyPem:  keypair.Public,
		PrivateKeyPem: keypair.Private,
		KeyId:         uri + "#main-key",
		CreatedAt:     user.CreatedAt,
		LastFetchedAt: user.CreatedAt,
	}

	err := db.wrapTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(sqlInsertUser, user.Id, user.Username, user.CreatedAt); err != nil {
			return err
		}
		return insertActor(tx, actor)
	})
	if err != nil {
		return err, nil
	}
	return nil, user
}

func (db *DB) ReadUserByUsername(username string) (error, *domain.User) {
	row := db.db.QueryRow(sqlSelectUserByUsername, username)
	var user domain.User
	err := row.Scan(&user.Id, &user.Username, &user.CreatedAt)
	if err != nil {
		return err, nil
	}
	return nil, &user
}

// SaveActor persists a newly resolved actor.
func (db *DB) SaveActor(actor *domain.Actor) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		return insertActor(tx, actor)
	})
}

// UpdateActor refreshes the mutable fields of a cached remote actor.
func (db *DB) UpdateActor(actor *domain.Actor) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateActor, actor.Username, actor.Domain, actor.InboxURL,
			actor.OutboxURL, actor.SharedInbox, actor.FollowersURL, actor.FollowingURL,
			actor.PublicKeyPem, actor.LastFetchedAt, actor.URI)
		return err
	})
}

func (db *DB) FindActorByURI(uri string) (*domain.Actor, error) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByURI, uri))
}

// FindActorByHandle looks up an actor by username and domain, the two
// components of a "@user@host" handle.
func (db *DB) FindActorByHandle(username string, domain string) (*domain.Actor, error) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByHandle, username, domain))
}

func (db *DB) FindActorById(id uuid.UUID) (*domain.Actor, error) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorById, id))
}

func (db *DB) FindActorByOwnerId(ownerId uuid.UUID) (*domain.Actor, error) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByOwnerId, ownerId))
}

// FindLocalActorByUsername looks up the actor of a local user.
func (db *DB) FindLocalActorByUsername(username string) (*domain.Actor, error) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByUsername, username))
}

func (db *DB) scanActor(row *sql.Row) (*domain.Actor, error) {
	var actor domain.Actor
	var ownerId sql.NullString
	err := row.Scan(&actor.Id, &ownerId, &actor.Username, &actor.Domain, &actor.URI,
		&actor.InboxURL, &actor.OutboxURL, &actor.SharedInbox, &actor.FollowersURL,
		&actor.FollowingURL, &actor.PublicKeyPem, &actor.PrivateKeyPem, &actor.KeyId,
		&actor.CreatedAt, &actor.LastFetchedAt)
	if err != nil {
		return nil, err
	}
	if ownerId.Valid {
		id, err := uuid.Parse(ownerId.String)
		if err != nil {
			return nil, err
		}
		actor.OwnerId = &id
	}
	return &actor, nil
}

func insertActor(tx *sql.Tx, actor *domain.Actor) error {
	var ownerId interface{}
	if actor.OwnerId != nil {
		ownerId = actor.OwnerId.String()
	}
	_, err := tx.Exec(sqlInsertActor, actor.Id, ownerId, actor.Username, actor.Domain,
		actor.URI, actor.InboxURL, actor.OutboxURL, actor.SharedInbox, actor.FollowersURL,
		actor.FollowingURL, actor.PublicKeyPem, actor.PrivateKeyPem, actor.KeyId,
		actor.CreatedAt, actor.LastFetchedAt)
	return err
}

func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
