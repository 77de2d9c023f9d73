// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/storeerr"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateDomain is returned when another organization already claims
// the domain. It wraps apperr.ErrConflict.
var ErrDuplicateDomain = fmt.Errorf("an organization with this domain already exists: %w", apperr.ErrConflict)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Create inserts org with a fresh id and fills defaults: active, free tier,
// DefaultMaxUsers seats and empty settings.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = uuid.NewString()
	org.NameCI = text.Fold(org.Name)
	org.IsActive = true
	if org.SubscriptionTier == "" {
		org.SubscriptionTier = models.TierFree
	}
	if org.MaxUsers <= 0 {
		org.MaxUsers = models.DefaultMaxUsers
	}
	if org.Settings == nil {
		org.Settings = map[string]string{}
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		return models.Organization{}, classify("create organization", err)
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organization{}, storeerr.Wrap("get organization", err)
	}
	return org, nil
}

// GetByIDs loads organizations by id, keyed by id.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]models.Organization, error) {
	out := make(map[string]models.Organization, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	orgs, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, o := range orgs {
		out[o.ID] = o
	}
	return out, nil
}

// List returns every organization ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Organization, error) {
	return s.find(ctx, bson.M{})
}

// ListByIDs returns the organizations in ids ordered by name.
func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]models.Organization, error) {
	if len(ids) == 0 {
		return []models.Organization{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Organization, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeerr.Wrap("list organizations", err)
	}
	defer cur.Close(ctx)

	orgs := []models.Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, storeerr.Wrap("decode organizations", err)
	}
	return orgs, nil
}

// Update holds the mutable fields of an organization. Nil fields are left
// untouched; an empty Domain clears it.
type Update struct {
	Name             *string
	Domain           *string
	SubscriptionTier *models.SubscriptionTier
	MaxUsers         *int
	Settings         map[string]string
}

// Update applies upd and returns the stored organization.
func (s *Store) Update(ctx context.Context, id string, upd Update) (models.Organization, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Domain != nil {
		if *upd.Domain == "" {
			unset["domain"] = ""
		} else {
			set["domain"] = *upd.Domain
		}
	}
	if upd.SubscriptionTier != nil {
		set["subscription_tier"] = *upd.SubscriptionTier
	}
	if upd.MaxUsers != nil {
		set["max_users"] = *upd.MaxUsers
	}
	if upd.Settings != nil {
		set["settings"] = upd.Settings
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var org models.Organization
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc, opts).Decode(&org); err != nil {
		return models.Organization{}, classify("update organization", err)
	}
	return org, nil
}

// Deactivate clears the active flag. Organizations are never deleted.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return storeerr.Wrap("deactivate organization", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("deactivate organization %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Count returns the number of organizations, active or not.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeerr.Wrap("count organizations", err)
	}
	return n, nil
}

// classify reports a duplicate key as ErrDuplicateDomain; the domain index
// is the only unique index besides _id.
func classify(op string, err error) error {
	err = storeerr.Wrap(op, err)
	if errors.Is(err, apperr.ErrConflict) {
		return ErrDuplicateDomain
	}
	return err
}
