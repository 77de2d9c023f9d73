// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/dalemusser/saasgate/internal/app/system/indexes"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// connectRetry bounds how long ConnectDB keeps retrying the first ping.
const connectRetry = 30 * time.Second

// ConnectDB opens the MongoDB client and waits for the server to answer,
// retrying with exponential backoff so the service can start alongside its
// database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("saasgate").
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	if err := pingWithRetry(ctx, client, logger); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

func pingWithRetry(ctx context.Context, client *mongo.Client, logger *zap.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = connectRetry

	err := backoff.RetryNotify(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		defer cancel()
		return client.Ping(pctx, readpref.Primary())
	}, bo, func(err error, next time.Duration) {
		logger.Warn("MongoDB not reachable yet; retrying", zap.Duration("next", next), zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// EnsureSchema attaches collection validators and creates the indexes every
// store relies on, including the partial unique index that allows one active
// membership per user and organization.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
