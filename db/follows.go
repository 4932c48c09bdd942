package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/bookmarkhive/hive/domain"
	"github.com/google/uuid"
)

const (
	sqlInsertFollowing     = `INSERT INTO followings(id, owner_id, actor_id, created_at) VALUES (?, ?, ?, ?)`
	sqlSelectFollowingById = `SELECT id, owner_id, actor_id, created_at FROM followings WHERE id = ?`

	sqlSelectFollowingsByActorId = `SELECT id, owner_id, actor_id, created_at FROM followings WHERE actor_id = ? ORDER BY created_at ASC`

	sqlInsertFollower           = `INSERT INTO followers(id, owner_id, actor_id, created_at) VALUES (?, ?, ?, ?)`
	sqlSelectFollowersByOwnerId = `SELECT id, owner_id, actor_id, created_at FROM followers WHERE owner_id = ? ORDER BY created_at ASC`
)

// CreateFollowing records that a local user follows an actor.
func (db *DB) CreateFollowing(following *domain.Following) error {
	if following.Id == uuid.Nil {
		following.Id = uuid.New()
	}
	if following.CreatedAt.IsZero() {
		following.CreatedAt = time.Now()
	}
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollowing, following.Id, following.OwnerId, following.ActorId, following.CreatedAt)
		return err
	})
}

func (db *DB) FindFollowingById(id uuid.UUID) (*domain.Following, error) {
	row := db.db.QueryRow(sqlSelectFollowingById, id)
	var following domain.Following
	err := row.Scan(&following.Id, &following.OwnerId, &following.ActorId, &following.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &following, nil
}

// ReadFollowingsByActorId returns all following edges pointing at an
// actor, one per local user who follows them.
func (db *DB) ReadFollowingsByActorId(actorId uuid.UUID) (error, *[]domain.Following) {
	rows, err := db.db.Query(sqlSelectFollowingsByActorId, actorId)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var followings []domain.Following
	for rows.Next() {
		var f domain.Following
		if err := rows.Scan(&f.Id, &f.OwnerId, &f.ActorId, &f.CreatedAt); err != nil {
			return err, nil
		}
		followings = append(followings, f)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	return nil, &followings
}

// SaveFollower records a remote actor following a local user. Re-saving
// the same edge is a no-op, the UNIQUE(owner_id, actor_id) constraint
// makes follow processing idempotent.
func (db *DB) SaveFollower(follower *domain.Follower) error {
	if follower.Id == uuid.Nil {
		follower.Id = uuid.New()
	}
	if follower.CreatedAt.IsZero() {
		follower.CreatedAt = time.Now()
	}
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollower, follower.Id, follower.OwnerId, follower.ActorId, follower.CreatedAt)
		return err
	})
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}
	return err
}

// ReadFollowersByOwnerId returns the follower edges of a local user in
// insertion order.
func (db *DB) ReadFollowersByOwnerId(ownerId uuid.UUID) (error, *[]domain.Follower) {
	rows, err := db.db.Query(sqlSelectFollowersByOwnerId, ownerId)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var followers []domain.Follower
	for rows.Next() {
		var f domain.Follower
		if err := rows.Scan(&f.Id, &f.OwnerId, &f.ActorId, &f.CreatedAt); err != nil {
			return err, nil
		}
		followers = append(followers, f)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	return nil, &followers
}
