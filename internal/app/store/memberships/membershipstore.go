// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/storeerr"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	orgs  *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("memberships"),
		orgs:  db.Collection("organizations"),
		users: db.Collection("user_profiles"),
	}
}

// ErrDuplicateMembership is returned when the user already holds an active
// membership in the organization. It wraps apperr.ErrConflict.
var ErrDuplicateMembership = fmt.Errorf("user already a member: %w", apperr.ErrConflict)

var errBadRole = errors.New("membership role is not a known role")

// Create inserts an active membership. InvitedAt defaults to now.
func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	if !roles.Valid(m.Role) {
		return models.Membership{}, errBadRole
	}
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.IsActive = true
	if m.InvitedAt.IsZero() {
		m.InvitedAt = now
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Organization = nil

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		err = storeerr.Wrap("create membership", err)
		if errors.Is(err, apperr.ErrConflict) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// GetByID loads one membership.
func (s *Store) GetByID(ctx context.Context, id string) (models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Membership{}, storeerr.Wrap("get membership", err)
	}
	return m, nil
}

// ActiveFor returns the active membership of userID in orgID.
func (s *Store) ActiveFor(ctx context.Context, userID, orgID string) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{
		"user_id":         userID,
		"organization_id": orgID,
		"is_active":       true,
	}).Decode(&m)
	if err != nil {
		return models.Membership{}, storeerr.Wrap("get active membership", err)
	}
	return m, nil
}

// ListForUser returns every membership of userID, active or not, oldest
// first, each with its organization snapshot attached. The order is the
// order identities receive their memberships in.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, storeerr.Wrap("list memberships", err)
	}
	defer cur.Close(ctx)

	ms := []models.Membership{}
	if err := cur.All(ctx, &ms); err != nil {
		return nil, storeerr.Wrap("decode memberships", err)
	}
	if len(ms) == 0 {
		return ms, nil
	}

	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.OrganizationID)
	}
	ocur, err := s.orgs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeerr.Wrap("load membership organizations", err)
	}
	defer ocur.Close(ctx)

	var orgs []models.Organization
	if err := ocur.All(ctx, &orgs); err != nil {
		return nil, storeerr.Wrap("decode membership organizations", err)
	}
	byID := make(map[string]*models.Organization, len(orgs))
	for i := range orgs {
		byID[orgs[i].ID] = &orgs[i]
	}
	for i := range ms {
		ms[i].Organization = byID[ms[i].OrganizationID]
	}
	return ms, nil
}

// ListForOrg returns the active memberships of orgID, oldest first, each
// joined with the member's profile.
func (s *Store) ListForOrg(ctx context.Context, orgID string) ([]models.MemberRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID, "is_active": true}, opts)
	if err != nil {
		return nil, storeerr.Wrap("list members", err)
	}
	defer cur.Close(ctx)

	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, storeerr.Wrap("decode members", err)
	}

	rows := make([]models.MemberRow, 0, len(ms))
	if len(ms) == 0 {
		return rows, nil
	}

	userIDs := make([]string, 0, len(ms))
	for _, m := range ms {
		userIDs = append(userIDs, m.UserID)
	}
	ucur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, storeerr.Wrap("load member profiles", err)
	}
	defer ucur.Close(ctx)

	var profiles []models.UserProfile
	if err := ucur.All(ctx, &profiles); err != nil {
		return nil, storeerr.Wrap("decode member profiles", err)
	}
	byID := make(map[string]*models.UserProfile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	for _, m := range ms {
		rows = append(rows, models.MemberRow{Membership: m, UserProfile: byID[m.UserID]})
	}
	return rows, nil
}

// Accept stamps AcceptedAt on a membership that has not been accepted yet.
func (s *Store) Accept(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "accepted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"accepted_at": now, "updated_at": now}},
	)
	return storeerr.Wrap("accept membership", err)
}

// Deactivate clears the active flag of a membership in orgID. Memberships
// are never deleted.
func (s *Store) Deactivate(ctx context.Context, orgID, id string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "organization_id": orgID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return storeerr.Wrap("deactivate membership", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("deactivate membership %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// CountActiveByOrg returns the number of active memberships in orgID.
func (s *Store) CountActiveByOrg(ctx context.Context, orgID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"organization_id": orgID, "is_active": true})
	if err != nil {
		return 0, storeerr.Wrap("count members", err)
	}
	return n, nil
}

// CountActiveByRole returns the number of active memberships with role in
// orgID.
func (s *Store) CountActiveByRole(ctx context.Context, orgID string, role roles.Role) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"organization_id": orgID, "role": role, "is_active": true})
	if err != nil {
		return 0, storeerr.Wrap("count members by role", err)
	}
	return n, nil
}
