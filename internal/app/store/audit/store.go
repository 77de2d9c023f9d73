// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/storeerr"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess       = "login_success"
	EventLoginFailed        = "login_failed"
	EventLoginRateLimited   = "login_rate_limited"
	EventRegistered         = "registered"
	EventTokenRefreshed     = "token_refreshed"
	EventLogout             = "logout"
	EventOrganizationSwitch = "organization_switched"
	EventAccessDenied       = "access_denied"
)

// Admin event types
const (
	EventOrgCreated     = "org_created"
	EventOrgUpdated     = "org_updated"
	EventOrgDeactivated = "org_deactivated"
	EventMemberInvited  = "member_invited"
	EventMemberRemoved  = "member_removed"
	EventProfileUpdated = "profile_updated"
)

// Event represents an audit event.
type Event struct {
	ID             string    `bson:"_id" json:"id"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	OrganizationID string    `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	UserID  string `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected identity
	ActorID string `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who performed the action

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	OrganizationID string
	UserID         string
	Category       string
	EventType      string
	StartTime      *time.Time
	EndTime        *time.Time
	Limit          int64
	Offset         int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return storeerr.Wrap("log audit event", err)
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.OrganizationID != "" {
		q["organization_id"] = f.OrganizationID
	}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Query retrieves audit events matching the filter, newest first.
// The limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, storeerr.Wrap("query audit events", err)
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, storeerr.Wrap("decode audit events", err)
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, filter.query())
	if err != nil {
		return 0, storeerr.Wrap("count audit events", err)
	}
	return n, nil
}
