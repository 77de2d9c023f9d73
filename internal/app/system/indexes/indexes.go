// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup from the EnsureSchema hook. Each collection
is reconciled independently and every problem is reported, so startup fails
fast with the full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, spec := range All() {
		if err := ensureIndexSet(ctx, db.Collection(spec.Collection), spec.Indexes, logger); err != nil {
			problems = append(problems, spec.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CollectionIndexes is the desired index set of one collection.
type CollectionIndexes struct {
	Collection string
	Indexes    []mongo.IndexModel
}

// All returns the desired indexes for every collection the application
// uses.
func All() []CollectionIndexes {
	return []CollectionIndexes{
		{"user_profiles", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
		}},
		{"organizations", []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "domain", Value: 1}},
				Options: options.Index().SetName("uniq_domain").SetUnique(true).
					SetPartialFilterExpression(bson.M{"domain": bson.M{"$type": "string"}}),
			},
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_name_ci"),
			},
		}},
		{"memberships", []mongo.IndexModel{
			{
				// One active membership per (user, organization).
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "organization_id", Value: 1}},
				Options: options.Index().SetName("uniq_active_user_org").SetUnique(true).
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_user_created"),
			},
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_org_active_created"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_org_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_user_timestamp"),
			},
		}},
		{"sessions", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
				Options: options.Index().SetName("idx_sessions_user"),
			},
			{
				// Records disappear once the cookie they describe has expired.
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("idx_sessions_ttl").SetExpireAfterSeconds(0),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.M `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

// sameOptions compares the options that change index semantics.
func sameOptions(want mongo.IndexModel, have existingIndex) bool {
	var unique *bool
	var partial any
	if want.Options != nil {
		unique = want.Options.Unique
		partial = want.Options.PartialFilterExpression
	}
	if isUnique(unique) != isUnique(have.Unique) {
		return false
	}
	return (partial == nil) == (len(have.Partial) == 0)
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection has no indexes; anything else is fatal.
		var ce mongo.CommandError
		if !errors.As(err, &ce) || ce.Code != 26 {
			return err
		}
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		sig := keySig(m.Keys.(bson.D))
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		if ex, ok := existing[sig]; ok {
			if sameOptions(m, ex) {
				logger.Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			logger.Info("index options changed; recreating",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop failed: %v", name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		logger.Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
