// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// End reasons
const (
	EndLogout   = "logout"
	EndRejected = "rejected" // the provider refused the session's tokens
)

// Session records one browser sign-in. ID is the session id carried in the
// cookie; a session with LogoutAt set is closed for good.
type Session struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`

	// Timing
	LoginAt   time.Time  `bson:"login_at"`
	LogoutAt  *time.Time `bson:"logout_at,omitempty"`
	ExpiresAt time.Time  `bson:"expires_at"` // TTL; when the cookie lapses

	// How did session end?
	EndReason string `bson:"end_reason,omitempty"`

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on session close
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Store manages browser session records.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Open records a new session. LoginAt defaults to now.
func (s *Store) Open(ctx context.Context, sess Session) error {
	if sess.LoginAt.IsZero() {
		sess.LoginAt = time.Now().UTC()
	}
	sess.LogoutAt = nil
	_, err := s.c.InsertOne(ctx, sess)
	return storeerr.Wrap("open session", err)
}

// Close ends an open session with the given reason and records its
// duration. Closing an unknown or already closed session is a no-op.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()

	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": id, "logout_at": nil}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return storeerr.Wrap("close session", err)
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
		}},
	)
	return storeerr.Wrap("close session", err)
}

// IsClosed reports whether id names a session that was closed. Sessions
// without a record are not closed.
func (s *Store) IsClosed(ctx context.Context, id string) (bool, error) {
	var sess struct {
		LogoutAt *time.Time `bson:"logout_at"`
	}
	opts := options.FindOne().SetProjection(bson.M{"logout_at": 1})
	err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, storeerr.Wrap("check session", err)
	}
	return sess.LogoutAt != nil, nil
}
