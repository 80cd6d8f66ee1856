package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Anandhu5Uthaman/College-mini/internal/config"
)

// MongoDB holds the client and the application database.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to the configured MongoDB deployment and pings the primary.
func NewMongoDB(ctx context.Context, cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns)).
		SetMinPoolSize(uint64(cfg.Database.MaxIdleConns))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to establish mongodb connection: %w", err)
	}

	return &MongoDB{Client: client, Database: client.Database(cfg.Database.Name)}, nil
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
