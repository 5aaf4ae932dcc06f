// Package data manages the MongoDB connection and the claims collection
// index contract.
package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/povhealth/claimspager/config"
	"github.com/povhealth/claimspager/logging/logger"
)

const connectTimeout = 10 * time.Second

// Data encapsulates the MongoDB client and the claims collection handle. The
// handle is safe for concurrent use; the engine holds no other shared state.
type Data struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
	log    *logger.Logger
}

// New connects to MongoDB using the configured URI and verifies the
// connection with a ping.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Data, error) {
	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("mongodb uri is empty, set %s", config.MongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.MongoDB.Database)
	log.Info(ctx, "connected to mongodb",
		"database", cfg.MongoDB.Database, "collection", cfg.MongoDB.Collection)

	return &Data{
		client: client,
		db:     db,
		coll:   db.Collection(cfg.MongoDB.Collection),
		log:    log,
	}, nil
}

// Collection returns the claims collection handle.
func (d *Data) Collection() *mongo.Collection {
	return d.coll
}

// Ping verifies the connection is alive.
func (d *Data) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (d *Data) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
