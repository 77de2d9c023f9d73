// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collection names the stores write to.
const (
	CollUserProfiles  = "user_profiles"
	CollOrganizations = "organizations"
	CollMemberships   = "memberships"
	CollAuditEvents   = "audit_events"
	CollSessions      = "sessions"
)

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), the validator is skipped with a log line.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Debug("validator ensured", zap.String("collection", coll))
	}

	ensure(CollUserProfiles, profilesSchema())
	ensure(CollOrganizations, orgsSchema())
	ensure(CollMemberships, membershipsSchema())
	ensure(CollAuditEvents, auditSchema())
	ensure(CollSessions, sessionsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists. It reports
// created == true only when this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// A concurrent instance may have created it first.
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func roleEnum() bson.A {
	out := bson.A{}
	for _, r := range roles.All() {
		out = append(out, string(r))
	}
	return out
}

func tierEnum() bson.A {
	return bson.A{
		string(models.TierFree),
		string(models.TierStarter),
		string(models.TierProfessional),
		string(models.TierEnterprise),
	}
}

func profilesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email", "is_active", "timezone"},
			"properties": bson.M{
				"_id":        nonBlank,
				"email":      bson.M{"bsonType": "string"},
				"first_name": bson.M{"bsonType": "string", "maxLength": 100},
				"last_name":  bson.M{"bsonType": "string", "maxLength": 100},
				"avatar_url": bson.M{"bsonType": "string", "maxLength": 2048},
				"phone":      bson.M{"bsonType": "string", "maxLength": 32},
				"timezone":   nonBlank,
				"is_active":  bson.M{"bsonType": "bool"},
			},
		},
	}
}

func orgsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "is_active", "subscription_tier", "max_users"},
			"properties": bson.M{
				"name":              nonBlank,
				"name_ci":           nonBlank,
				"domain":            bson.M{"bsonType": "string"},
				"is_active":         bson.M{"bsonType": "bool"},
				"subscription_tier": bson.M{"enum": tierEnum()},
				"max_users":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"settings":          bson.M{"bsonType": "object"},
			},
		},
	}
}

func membershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "organization_id", "role", "is_active"},
			"properties": bson.M{
				"user_id":         nonBlank,
				"organization_id": nonBlank,
				"role":            bson.M{"enum": roleEnum()},
				"is_active":       bson.M{"bsonType": "bool"},
				"invited_at":      bson.M{"bsonType": "date"},
				"accepted_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}

func auditSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{"auth", "admin"}},
				"event_type": nonBlank,
				"success":    bson.M{"bsonType": "bool"},
				"details":    bson.M{"bsonType": "object"},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "user_id", "login_at", "expires_at"},
			"properties": bson.M{
				"_id":        nonBlank,
				"user_id":    nonBlank,
				"login_at":   bson.M{"bsonType": "date"},
				"logout_at":  bson.M{"bsonType": "date"},
				"expires_at": bson.M{"bsonType": "date"},
				"end_reason": bson.M{"enum": bson.A{"logout", "rejected"}},
			},
		},
	}
}
