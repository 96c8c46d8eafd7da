package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/microblog/internal/db"
)

// Compile-time check: Client implements db.Pinger.
var _ db.Pinger = (*Client)(nil)

const disconnectTimeout = 10 * time.Second

// Config holds connection parameters for a MongoDB deployment.
type Config struct {
	URI      string
	Database string
}

// Client owns a mongo.Client and the database the service works in.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient configures a MongoDB client. The driver connects lazily;
// use WaitForReady to block until the deployment answers.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	//nolint:contextcheck // mongo.Connect only validates options and starts background monitoring
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{client: client, database: client.Database(cfg.Database)}, nil
}

// NewClientForTest wraps an existing database handle (test-only).
func NewClientForTest(database *mongo.Database) *Client {
	return &Client{client: database.Client(), database: database}
}

// Ping checks connectivity against the primary.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (c *Client) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	_ = c.client.Disconnect(ctx)
}

// WaitForReady polls Ping until the deployment responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Collection returns a handle for the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}
