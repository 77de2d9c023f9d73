// internal/app/store/users/userstore.go
package userstore

// User profiles are keyed by the identity provider's user id. The provider
// owns credentials; this collection only holds profile data.

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/storeerr"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_profiles")}
}

// GetByID loads a profile by identity id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, storeerr.Wrap("get profile", err)
	}
	return &u, nil
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, storeerr.Wrap("get profile by email", err)
	}
	return &u, nil
}

// GetByIDs loads the profiles for ids, keyed by id.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]models.UserProfile, error) {
	out := make(map[string]models.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeerr.Wrap("list profiles", err)
	}
	defer cur.Close(ctx)

	var list []models.UserProfile
	if err := cur.All(ctx, &list); err != nil {
		return nil, storeerr.Wrap("decode profiles", err)
	}
	for _, u := range list {
		out[u.ID] = u
	}
	return out, nil
}

// EnsureProfile returns the profile for id, creating it on first
// authentication, and stamps LastLogin. An existing profile keeps its
// fields; only email is refreshed from the provider.
func (s *Store) EnsureProfile(ctx context.Context, id, email string) (*models.UserProfile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":      normalize.Email(email),
			"last_login": now,
		},
		"$setOnInsert": bson.M{
			"timezone":   models.DefaultTimezone,
			"is_active":  true,
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.UserProfile
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, storeerr.Wrap("ensure profile", err)
	}
	return &u, nil
}

// ProfileUpdate holds the fields an identity may change on its own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
	Phone     *string
	Timezone  *string
}

// Update applies upd and returns the stored profile.
func (s *Store) Update(ctx context.Context, id string, upd ProfileUpdate) (*models.UserProfile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FirstName != nil {
		set["first_name"] = normalize.Name(*upd.FirstName)
	}
	if upd.LastName != nil {
		set["last_name"] = normalize.Name(*upd.LastName)
	}
	if upd.AvatarURL != nil {
		set["avatar_url"] = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.Phone != nil {
		set["phone"] = strings.TrimSpace(*upd.Phone)
	}
	if upd.Timezone != nil {
		set["timezone"] = strings.TrimSpace(*upd.Timezone)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.UserProfile
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, storeerr.Wrap("update profile", err)
	}
	return &u, nil
}

// Count returns the number of profiles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeerr.Wrap("count profiles", err)
	}
	return n, nil
}
