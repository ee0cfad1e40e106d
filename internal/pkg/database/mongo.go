package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/config"
)

// SetupMongo connects, pings, and returns the configured database.
// The caller owns the client and must Disconnect it on shutdown.
func SetupMongo(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	logger.Info("connected to mongo", "database", cfg.Database)
	return client, client.Database(cfg.Database), nil
}
